package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/tillsync/internal/core/domain"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func saleValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// validateSale checks a sale request before it is recorded.
// Failures wrap domain.ErrInvalidInput and name the offending fields.
func validateSale(req *domain.SaleRequest) error {
	if err := saleValidator().Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	for i, line := range req.Items {
		if line.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: items[%d].unit_price must not be negative", domain.ErrInvalidInput, i)
		}
		if line.Discount.IsNegative() {
			return fmt.Errorf("%w: items[%d].discount must not be negative", domain.ErrInvalidInput, i)
		}
	}
	return nil
}
