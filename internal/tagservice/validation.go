package tagservice

import (
	"regexp"

	"github.com/Markelych32/blog-platform/internal/common"
)

var NameRX = regexp.MustCompile("^[a-zA-Z0-9 -]+$")

func validateName(v *common.Validator, name string) {
	v.Check(name != "", "name", "must be provided")
	v.Check(v.CheckStringLength(name, 1, 50), "name", "must be between 1 and 50 characters long")
	v.Check(NameRX.MatchString(name), "name", "must only contain letters, numbers, spaces, and hyphens")
}

func validateNames(v *common.Validator, names []string) {
	v.Check(len(names) > 0, "names", "must be provided")
	v.Check(len(names) <= MaxTagNames, "names", "must not contain more than 10 names")
	for _, name := range names {
		validateName(v, name)
	}
}
