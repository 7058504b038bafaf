package roles

import "errors"

var (
	ErrUnauthenticated             = errors.New("authentication required")
	ErrActorNotFound               = errors.New("actor not found")
	ErrTargetNotFound              = errors.New("target not found")
	ErrInsufficientPermissions     = errors.New("insufficient permissions")
	ErrInvalidTransition           = errors.New("invalid role transition")
	ErrCannotPromoteFurther        = errors.New("cannot promote further")
	ErrCannotDemoteFurther         = errors.New("cannot demote further")
	ErrCannotDemoteLastSuperAdmin  = errors.New("cannot demote the last super admin")
	ErrScopeViolation              = errors.New("target is outside the actor's department")
	ErrExternalCollaboratorFailure = errors.New("external collaborator failure")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrUnauthenticated, "Unauthenticated"},
	{ErrActorNotFound, "ActorNotFound"},
	{ErrTargetNotFound, "TargetNotFound"},
	{ErrInsufficientPermissions, "InsufficientPermissions"},
	{ErrInvalidTransition, "InvalidTransition"},
	{ErrCannotPromoteFurther, "CannotPromoteFurther"},
	{ErrCannotDemoteFurther, "CannotDemoteFurther"},
	{ErrCannotDemoteLastSuperAdmin, "CannotDemoteLastSuperAdmin"},
	{ErrScopeViolation, "ScopeViolation"},
	{ErrExternalCollaboratorFailure, "ExternalCollaboratorFailure"},
}

// KindOf returns the error kind name for err, or "" when err is not one of
// the errors declared in this package.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return ""
}
