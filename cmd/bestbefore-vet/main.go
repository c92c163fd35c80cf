// Command bestbefore-vet runs the bestbefore analyzer as a vet tool:
//
//	go vet -vettool=$(which bestbefore-vet) ./...
//	go vet -vettool=$(which bestbefore-vet) -bestbefore.warnings ./...
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"bestbefore/internal/analyzer"
)

func main() {
	singlechecker.Main(analyzer.Analyzer)
}
