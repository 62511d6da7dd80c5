package models

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTrainer Role = "trainer"
)

// StringList stores a list of ids as a comma-separated TEXT column so the
// same schema works on Postgres and SQLite.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	return strings.Join(l, ","), nil
}

func (l *StringList) Scan(src interface{}) error {
	s, ok := src.(string)
	if !ok {
		if b, isBytes := src.([]byte); isBytes {
			s = string(b)
		} else if src == nil {
			*l = nil
			return nil
		} else {
			return fmt.Errorf("cannot scan %T into StringList", src)
		}
	}
	if s == "" {
		*l = nil
		return nil
	}
	*l = strings.Split(s, ",")
	return nil
}

// IntList is StringList for year numbers.
type IntList []int

func (l IntList) Value() (driver.Value, error) {
	parts := make([]string, len(l))
	for i, n := range l {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ","), nil
}

func (l *IntList) Scan(src interface{}) error {
	var raw StringList
	if err := raw.Scan(src); err != nil {
		return fmt.Errorf("cannot scan %T into IntList", src)
	}
	out := make(IntList, 0, len(raw))
	for _, p := range raw {
		n, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("bad int list element %q: %w", p, err)
		}
		out = append(out, n)
	}
	*l = out
	return nil
}

// User is an operator account. Empty AssignedGroups/AssignedYears on a
// trainer means no restriction on that axis; admins are never restricted.
type User struct {
	ID             string     `db:"id" json:"id"`
	Username       string     `db:"username" json:"username" validate:"required"`
	Name           string     `db:"name" json:"name"`
	Role           Role       `db:"role" json:"role" validate:"required,oneof=admin trainer"`
	AssignedGroups StringList `db:"assigned_groups" json:"assigned_groups"`
	AssignedYears  IntList    `db:"assigned_years" json:"assigned_years"`
}

func (u *User) Validate() error {
	validate := validator.New()
	return validate.Struct(u)
}
