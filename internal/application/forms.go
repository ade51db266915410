package application

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hobbyhub/gateway/pkg/validation"
)

// GroupForm is the create/edit group form.
type GroupForm struct {
	GroupName     string         `json:"groupName" form:"groupName" validate:"required,max=120"`
	Description   string         `json:"description" form:"description" validate:"required"`
	Location      string         `json:"location" form:"location" validate:"max=200"`
	MaxMembers    int            `json:"maxMembers" form:"maxMembers" validate:"gte=0"`
	FormattedDate string         `json:"formattedDate" form:"formattedDate"`
	FormatHour    string         `json:"formatHour" form:"formatHour"`
	Day           string         `json:"day" form:"day"`
	Category      string         `json:"category" form:"category" validate:"category"`
	ExistingImage string         `json:"image" form:"existingImage"`
	Image         ImageSelection `json:"-" form:"-"`
}

// Reset returns the form to its initial empty state.
func (f *GroupForm) Reset() {
	limit := f.Image.MaxBytes
	*f = GroupForm{}
	f.Image.MaxBytes = limit
}

type ArticleForm struct {
	Title            string         `json:"title" form:"title" validate:"required,max=200"`
	ShortDescription string         `json:"shortDescription" form:"shortDescription" validate:"max=500"`
	Content          string         `json:"content" form:"content" validate:"required"`
	Category         string         `json:"category" form:"category" validate:"category"`
	ExistingCover    string         `json:"coverImage" form:"existingCover"`
	CoverImage       ImageSelection `json:"-" form:"-"`
}

func (f *ArticleForm) Reset() {
	limit := f.CoverImage.MaxBytes
	*f = ArticleForm{}
	f.CoverImage.MaxBytes = limit
}

type CommentForm struct {
	Text string `json:"text" form:"text" validate:"required,max=2000"`
	// Name is used for visitors who are not signed in.
	Name string `json:"name" form:"name" validate:"max=80"`
}

func (f *CommentForm) Reset() { *f = CommentForm{} }

// validateForm trims string fields in place and runs the struct validator.
func validateForm(form any, trim ...*string) error {
	for _, s := range trim {
		*s = strings.TrimSpace(*s)
	}
	if err := validation.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return &ValidationError{Fields: validation.ToDetails(err)}
		}
		return err
	}
	return nil
}
