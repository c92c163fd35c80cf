package fuzztests

import (
	"testing"
)

const maxFuzzInput = 16 << 10

var dateSeeds = []string{
	"03.2024", "12.9999", "01.0001", "00.2024", "13.2024", "3.2024",
	"03.24", "2024-03", "03.2024 ", "", ".", "03.", ".2024", "99.99999",
}

var argSeeds = []string{
	`03.2024`,
	`"03.2024"`,
	`01.2023 expires=12.2023`,
	`"01.2023", expires="12.2023"`,
	`expires=01.2028`,
	`02.2023 message="Please use new_api() instead"`,
	"02.2023 message=`raw`",
	`03.2024 until=05.2024`,
	`03.2024 message="unterminated`,
	`=,=,"`,
	`message="é\n"`,
}

var sourceSeeds = []string{
	"package p\n\n//bestbefore:03.2024\nfunc F() {}\n",
	"//bestbefore:06.2023\npackage p\n",
	"package p\n\ntype (\n\tA int\n\t//bestbefore:05.2025\n\tB string\n)\n",
	"package p\n\nfunc F() {\n\t//bestbefore:07.2024\n\tfor {}\n}\n",
	"package p\n\n//bestbefore:09.2024\n\nfunc Detached() {}\n",
	"package p\n\nvar x = 1 //bestbefore:01.2020\n",
	"package p\n\nfunc (\n//bestbefore:",
}

func addStrings(f *testing.F, seeds []string) {
	for _, s := range seeds {
		f.Add(s)
	}
}

func clip(s string) string {
	if len(s) > maxFuzzInput {
		return s[:maxFuzzInput]
	}
	return s
}
