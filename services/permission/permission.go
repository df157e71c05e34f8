// Package permission decides whether an actor may act on a request or
// review. Every check fails with apperrors.ErrPermissionDenied.
package permission

import (
	"smartfix/apperrors"
	"smartfix/models"
)

func active(actor models.Actor) error {
	if actor.ID == "" {
		return apperrors.PermissionDenied("authentication required")
	}
	if !actor.Active {
		return apperrors.PermissionDenied("account is inactive")
	}
	return nil
}

func isOwner(actor models.Actor, req *models.ServiceRequest) bool {
	return req.UserID == actor.ID
}

// isAssigned reports whether the actor's provider profile is the one
// assigned to the request.
func isAssigned(provider *models.Provider, req *models.ServiceRequest) bool {
	return provider != nil && req.AssignedProvider != "" && provider.ID == req.AssignedProvider
}

// CanCreate allows any active actor to post a request.
func CanCreate(actor models.Actor) error {
	return active(actor)
}

// CanView allows the owner, the assigned provider and admins. Any
// provider may view a pending request so it can be accepted.
func CanView(actor models.Actor, provider *models.Provider, req *models.ServiceRequest) error {
	if err := active(actor); err != nil {
		return err
	}
	if actor.IsAdmin() || isOwner(actor, req) || isAssigned(provider, req) {
		return nil
	}
	if req.Status == models.StatusPending && provider != nil && !provider.Deleted() {
		return nil
	}
	return apperrors.PermissionDenied("not a participant of this request")
}

// CanAccept requires an active, verified, non-deleted provider profile.
func CanAccept(actor models.Actor, provider *models.Provider) error {
	if err := active(actor); err != nil {
		return err
	}
	if actor.Role != models.RoleProvider || provider == nil || provider.Deleted() {
		return apperrors.PermissionDenied("only providers can accept requests")
	}
	if !provider.Active {
		return apperrors.PermissionDenied("provider is inactive")
	}
	if !provider.Verified {
		return apperrors.PermissionDenied("provider is not verified")
	}
	return nil
}

// CanReject requires a provider profile.
func CanReject(actor models.Actor, provider *models.Provider) error {
	if err := active(actor); err != nil {
		return err
	}
	if actor.Role != models.RoleProvider || provider == nil || provider.Deleted() {
		return apperrors.PermissionDenied("only providers can reject requests")
	}
	return nil
}

// CanWork covers start, complete and restart: the assigned provider or an
// admin.
func CanWork(actor models.Actor, provider *models.Provider, req *models.ServiceRequest) error {
	if err := active(actor); err != nil {
		return err
	}
	if actor.IsAdmin() || isAssigned(provider, req) {
		return nil
	}
	return apperrors.PermissionDenied("only the assigned provider can work on this request")
}

// CanReviewWork covers approve and request-revision: the owner only.
func CanReviewWork(actor models.Actor, req *models.ServiceRequest) error {
	if err := active(actor); err != nil {
		return err
	}
	if isOwner(actor, req) {
		return nil
	}
	return apperrors.PermissionDenied("only the request owner can review completed work")
}

// CanCancel allows the owner, the assigned provider and admins.
func CanCancel(actor models.Actor, provider *models.Provider, req *models.ServiceRequest) error {
	if err := active(actor); err != nil {
		return err
	}
	if actor.IsAdmin() || isOwner(actor, req) || isAssigned(provider, req) {
		return nil
	}
	return apperrors.PermissionDenied("not allowed to cancel this request")
}

// CanDelete allows the owner only.
func CanDelete(actor models.Actor, req *models.ServiceRequest) error {
	if err := active(actor); err != nil {
		return err
	}
	if !isOwner(actor, req) {
		return apperrors.PermissionDenied("only the request owner can delete it")
	}
	return nil
}

// CanAttachMedia allows the owner and the assigned provider.
func CanAttachMedia(actor models.Actor, provider *models.Provider, req *models.ServiceRequest) error {
	if err := active(actor); err != nil {
		return err
	}
	if isOwner(actor, req) || isAssigned(provider, req) {
		return nil
	}
	return apperrors.PermissionDenied("not allowed to attach media to this request")
}

// CanMatch allows the owner and admins to run matching for a request.
func CanMatch(actor models.Actor, req *models.ServiceRequest) error {
	if err := active(actor); err != nil {
		return err
	}
	if actor.IsAdmin() || isOwner(actor, req) {
		return nil
	}
	return apperrors.PermissionDenied("only the request owner can search for providers")
}

func CanViewUserStatistics(actor models.Actor, userID string) error {
	if err := active(actor); err != nil {
		return err
	}
	if actor.IsAdmin() || actor.ID == userID {
		return nil
	}
	return apperrors.PermissionDenied("not allowed to view these statistics")
}

func CanViewProviderStatistics(actor models.Actor, provider *models.Provider) error {
	if err := active(actor); err != nil {
		return err
	}
	if actor.IsAdmin() || provider.UserID == actor.ID {
		return nil
	}
	return apperrors.PermissionDenied("not allowed to view these statistics")
}

// CanCreateReview allows only the request owner.
func CanCreateReview(actor models.Actor, req *models.ServiceRequest) error {
	if err := active(actor); err != nil {
		return err
	}
	if !isOwner(actor, req) {
		return apperrors.PermissionDenied("only the request owner can review it")
	}
	return nil
}

// CanEditReview allows the author to edit content. Moderation fields
// (status) are admin-only.
func CanEditReview(actor models.Actor, review *models.Review, moderating bool) error {
	if err := active(actor); err != nil {
		return err
	}
	if moderating {
		if actor.IsAdmin() {
			return nil
		}
		return apperrors.PermissionDenied("only admins can moderate reviews")
	}
	if review.UserID == actor.ID {
		return nil
	}
	return apperrors.PermissionDenied("only the author can edit this review")
}

// CanDeleteReview allows the author and admins.
func CanDeleteReview(actor models.Actor, review *models.Review) error {
	if err := active(actor); err != nil {
		return err
	}
	if actor.IsAdmin() || review.UserID == actor.ID {
		return nil
	}
	return apperrors.PermissionDenied("only the author can delete this review")
}
