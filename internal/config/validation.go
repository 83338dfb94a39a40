package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var validate = sync.OnceValue(func() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("validDirPath", validateDirPath)
	return v
})

type trashDirInput struct {
	TrashDir string `validate:"required,validDirPath"`
}

type gracePeriodInput struct {
	Days int `validate:"gte=0"`
}

func validateStruct(s any) error {
	err := validate().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, verr := range verrs {
			return fmt.Errorf("validation error: Field %s, %q is invalid (%s)", verr.Field(), fmt.Sprint(verr.Value()), verr.Tag())
		}
	}
	return err
}

// validateDirPath is a validation function for directory paths that works on any OS.
// The path must be absolute. An existing path must be a directory; a missing
// one is accepted as long as its format survives filepath.Clean.
//
// Empty strings are considered invalid.
func validateDirPath(fl validator.FieldLevel) bool {
	path := strings.TrimSpace(fl.Field().String())
	if path == "" || !filepath.IsAbs(path) {
		return false
	}

	cleanPath := filepath.Clean(path)
	if cleanPath != filepath.Clean(cleanPath) {
		return false
	}

	fi, err := os.Stat(cleanPath)
	if err == nil {
		return fi.IsDir()
	}
	if os.IsNotExist(err) {
		return true
	}
	// e.g. ENOTDIR when a parent is a regular file
	return false
}
