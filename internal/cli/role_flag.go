package cli

import (
	"helpr/internal/model"

	"github.com/spf13/pflag"
)

// roleFlag is a pflag.Value that only accepts student or tutor.
type roleFlag struct {
	role model.Role
}

var _ pflag.Value = (*roleFlag)(nil)

func (r *roleFlag) String() string { return string(r.role) }

func (r *roleFlag) Set(s string) error {
	role, err := model.ParseRole(s)
	if err != nil {
		return err
	}
	r.role = role
	return nil
}

func (r *roleFlag) Type() string { return "role" }
