package handler

import (
	stderrors "errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"
)

// SignupPayload is the credential signup body.
type SignupPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r SignupPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

// LoginPayload is the credential login body.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// GoogleCallbackPayload carries the provider ID token.
type GoogleCallbackPayload struct {
	Token string `json:"token"`
}

// Validate will run validation rules
func (r GoogleCallbackPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
	)
}

// CheckVerificationPayload asks for an account's verification state.
type CheckVerificationPayload struct {
	Email string `json:"email"`
}

// Validate will run validation rules
func (r CheckVerificationPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// ProfilePayload is the mutable profile surface.
type ProfilePayload struct {
	Name  string `json:"name"`
	Phone string `json:"phoneNumber"`
	Bio   string `json:"bio"`
}

// Validate will run validation rules
func (r ProfilePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(1, 200)),
		validation.Field(&r.Phone, validation.By(validPhoneNumber)),
		validation.Field(&r.Bio, validation.Length(0, 1000)),
	)
}

// NormalizedPhone returns the phone in E.164 form, empty when unset.
func (r ProfilePayload) NormalizedPhone() string {
	if r.Phone == "" {
		return ""
	}
	num, err := phonenumbers.Parse(r.Phone, "US")
	if err != nil {
		return r.Phone
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

func validPhoneNumber(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	num, err := phonenumbers.Parse(s, "US")
	if err != nil {
		return stderrors.New("must be a valid phone number")
	}
	if !phonenumbers.IsValidNumber(num) {
		return stderrors.New("must be a valid phone number")
	}
	return nil
}

// ReviewPayload is a rating plus optional comment.
type ReviewPayload struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Validate will run validation rules
func (r ReviewPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Rating, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&r.Comment, validation.Length(0, 2000)),
	)
}
