package categoryservice

import (
	"regexp"

	"github.com/Markelych32/blog-platform/internal/common"
)

var NameRX = regexp.MustCompile("^[a-zA-Z0-9 -]+$")

func validateName(v *common.Validator, name string) {
	v.Check(name != "", "name", "must be provided")
	v.Check(v.CheckStringLength(name, 2, 50), "name", "must be between 2 and 50 characters long")
	v.Check(NameRX.MatchString(name), "name", "must only contain letters, numbers, spaces, and hyphens")
}
