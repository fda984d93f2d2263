package server

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	usernameRe = regexp.MustCompile(`^[a-z0-9@.+_-]+$`)
	fileNameRe = regexp.MustCompile(`^[\w.-]+$`)
)

type registerForm struct {
	Name      string `form:"name" validate:"max=200"`
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"omitempty,max=254,email"`
	Password1 string `form:"password1" validate:"required,min=8,bcrypt"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

type profileForm struct {
	Name     string `form:"name" validate:"max=200"`
	Username string `form:"username" validate:"required,max=150,username"`
	Email    string `form:"email" validate:"omitempty,max=254,email"`
	Bio      string `form:"bio" validate:"max=2000"`
	Avatar   string `form:"avatar" validate:"omitempty,max=500,avatar"`
}

type roomForm struct {
	Topic       string `form:"topic" validate:"required,max=200"`
	Name        string `form:"name" validate:"required,max=200"`
	Description string `form:"description" validate:"max=5000"`
}

func parseRegisterForm(r *http.Request) registerForm {
	return registerForm{
		Name:      strings.TrimSpace(r.PostFormValue("name")),
		Username:  strings.ToLower(strings.TrimSpace(r.PostFormValue("username"))),
		Email:     strings.TrimSpace(r.PostFormValue("email")),
		Password1: r.PostFormValue("password1"),
		Password2: r.PostFormValue("password2"),
	}
}

func parseProfileForm(r *http.Request) profileForm {
	return profileForm{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Username: strings.ToLower(strings.TrimSpace(r.PostFormValue("username"))),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Bio:      strings.TrimSpace(r.PostFormValue("bio")),
		Avatar:   strings.TrimSpace(r.PostFormValue("avatar")),
	}
}

func parseRoomForm(r *http.Request) roomForm {
	return roomForm{
		Topic:       strings.TrimSpace(r.PostFormValue("topic")),
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
	}
}

func newValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	// bcrypt ignores input past 72 bytes and newer versions refuse it
	_ = v.RegisterValidation("bcrypt", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= 72
	})
	_ = v.RegisterValidation("avatar", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
			return !strings.ContainsAny(s, " \"'<>")
		}
		return fileNameRe.MatchString(s)
	})

	// report form field names instead of struct field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("form"); name != "" {
			return name
		}
		return fld.Name
	})

	return v
}

// formErrors turns validation error into messages keyed by form field name
func formErrors(err error) map[string]string {
	errs := make(map[string]string)

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		errs["__all__"] = "Invalid form."
		return errs
	}

	for _, fe := range ves {
		if _, ok := errs[fe.Field()]; ok {
			continue
		}
		errs[fe.Field()] = fieldMessage(fe)
	}

	return errs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "eqfield":
		return "The two password fields didn't match."
	case "bcrypt":
		return "Password is too long."
	case "avatar":
		return "Enter a valid URL or file name."
	default:
		return "Invalid value."
	}
}
