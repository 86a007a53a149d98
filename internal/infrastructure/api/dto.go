package api

import (
	"errors"
	"reflect"
	"strings"

	"shopify-workspace-connector/internal/domain"

	"github.com/go-playground/validator/v10"
)

type initAuthRequest struct {
	ShopDomain  string `json:"shopDomain" validate:"required"`
	WorkspaceID string `json:"workspaceId" validate:"required"`
}

type initAuthResponse struct {
	AuthURL string `json:"authUrl"`
}

type triggerSyncRequest struct {
	JobType string `json:"jobType" validate:"required,oneof=products inventory orders locations full"`
}

type tenantsResponse struct {
	Tenants []*domain.Tenant `json:"tenants"`
}

type syncJobResponse struct {
	SyncJob *domain.SyncJob `json:"syncJob"`
}

type syncJobsResponse struct {
	SyncJobs []*domain.SyncJob `json:"syncJobs"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError turns validator failures into a Validation error naming the first bad field
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.Errorf(domain.ErrValidation, "invalid request body")
	}
	e := fieldErrs[0]
	switch e.Tag() {
	case "required":
		return domain.Errorf(domain.ErrValidation, "%s is required", e.Field())
	case "oneof":
		return domain.Errorf(domain.ErrValidation, "%s must be one of: %s", e.Field(), e.Param())
	default:
		return domain.Errorf(domain.ErrValidation, "%s is invalid", e.Field())
	}
}
