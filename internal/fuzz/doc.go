// Package fuzztests holds Go fuzz harnesses for the annotation front end:
// date parsing, argument parsing and directive scanning. They guard against
// panics and hangs on arbitrary input.
package fuzztests
