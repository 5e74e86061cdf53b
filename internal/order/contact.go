package order

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Contact is the customer and shipping data of an order.
type Contact struct {
	Name        string `json:"name"        validate:"min=2"`
	Lastname    string `json:"lastname"    validate:"min=2"`
	Phone       string `json:"phone"       validate:"phone"`
	Email       string `json:"email"       validate:"shopemail"`
	Company     string `json:"company"     validate:"min=5"`
	Address     string `json:"address"     validate:"min=5"`
	Apartment   string `json:"apartment"   validate:"min=1"`
	PostalCode  string `json:"postalCode"  validate:"min=3"`
	City        string `json:"city"        validate:"min=5"`
	Country     string `json:"country"     validate:"min=5"`
	OrderNotice string `json:"orderNotice"`
}

// FieldError describes one violated rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	emailRe  = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)
	nonDigit = regexp.MustCompile(`\D`)

	validateOnce sync.Once
	validate     *validator.Validate
)

func contactValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			return name
		})
		_ = v.RegisterValidation("shopemail", func(fl validator.FieldLevel) bool {
			return emailRe.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return len(nonDigit.ReplaceAllString(fl.Field().String(), "")) >= 10
		})
		validate = v
	})
	return validate
}

// Normalized returns c with every field trimmed.
func (c Contact) Normalized() Contact {
	c.Name = strings.TrimSpace(c.Name)
	c.Lastname = strings.TrimSpace(c.Lastname)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.Company = strings.TrimSpace(c.Company)
	c.Address = strings.TrimSpace(c.Address)
	c.Apartment = strings.TrimSpace(c.Apartment)
	c.PostalCode = strings.TrimSpace(c.PostalCode)
	c.City = strings.TrimSpace(c.City)
	c.Country = strings.TrimSpace(c.Country)
	c.OrderNotice = strings.TrimSpace(c.OrderNotice)
	return c
}

// Validate checks the trimmed contact and returns one FieldError per violated
// rule, in field order. A nil result means the contact is acceptable.
func (c Contact) Validate() []FieldError {
	err := contactValidator().Struct(c.Normalized())
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "contact", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "shopemail":
		return "must be a valid email address"
	case "phone":
		return "must contain at least 10 digits"
	case "min":
		if fe.Param() == "1" {
			return "is required"
		}
		return "must be at least " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
