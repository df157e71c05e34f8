package request

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"smartfix/apperrors"
	requestRepo "smartfix/database/repository/request"
	"smartfix/models"
	"smartfix/services/lifecycle"
	"smartfix/services/media"
	"smartfix/services/notification"
	"smartfix/services/permission"
	"smartfix/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRequestService implements RequestService. Notifier, Reminders
// and Media are optional.
type DefaultRequestService struct {
	Requests  requestRepo.RequestRepository
	Providers ProviderLookup
	Users     UserLookup
	Lifecycle *lifecycle.Machine
	Matcher   Matcher
	Ratings   CompletionRecorder
	Notifier  notification.NotificationService
	Reminders ReminderScheduler
	Media     media.MediaService
	Logger    *zap.Logger
	Now       func() time.Time
}

var _ RequestService = (*DefaultRequestService)(nil)

// completedJobAttempts bounds how often approve tries to count the job.
const completedJobAttempts = 3

func (s *DefaultRequestService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// actorProvider returns the provider profile of a provider actor, or nil
// for anyone else.
func (s *DefaultRequestService) actorProvider(ctx context.Context, actor models.Actor) (*models.Provider, error) {
	if actor.Role != models.RoleProvider {
		return nil, nil
	}
	p, err := s.Providers.GetByUserID(ctx, actor.ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// workerID is the provider id the lifecycle checks against; admins act
// without one.
func workerID(actor models.Actor, provider *models.Provider) string {
	if actor.IsAdmin() || provider == nil {
		return ""
	}
	return provider.ID
}

func (s *DefaultRequestService) CreateRequest(ctx context.Context, actor models.Actor, input models.CreateRequestInput) (*models.ServiceRequest, error) {
	if err := permission.CanCreate(actor); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(input); err != nil {
		return nil, err
	}

	var msgs []string
	if !input.Location.Geo.Valid() {
		msgs = append(msgs, "field 'location.geo' must be a [lng, lat] point")
	}
	if b := input.Budget; b != nil && (b.Min < 0 || b.Max < b.Min) {
		msgs = append(msgs, "field 'budget' must satisfy 0 <= min <= max")
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		msgs = append(msgs, "field 'category' is required")
	}
	if len(msgs) > 0 {
		return nil, apperrors.Validation(msgs...)
	}

	urgency := input.Urgency
	if urgency == "" {
		urgency = models.UrgencyMedium
	}
	now := s.now()
	req := &models.ServiceRequest{
		ID:            uuid.NewString(),
		UserID:        actor.ID,
		Title:         strings.TrimSpace(input.Title),
		Description:   strings.TrimSpace(input.Description),
		Category:      category,
		Urgency:       urgency,
		Budget:        input.Budget,
		Location:      *input.Location,
		Images:        input.Images,
		ScheduledDate: input.ScheduledDate,
		Status:        models.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Requests.Create(ctx, req); err != nil {
		return nil, err
	}

	s.Logger.Info("Service request created",
		zap.String("requestId", req.ID),
		zap.String("userId", actor.ID),
		zap.String("category", req.Category),
	)
	return req, nil
}

func (s *DefaultRequestService) GetRequest(ctx context.Context, actor models.Actor, id string) (*models.ServiceRequest, error) {
	req, err := s.Requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	provider, err := s.actorProvider(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := permission.CanView(actor, provider, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ListRequests returns the actor's own requests, or for providers the
// requests assigned to them.
func (s *DefaultRequestService) ListRequests(ctx context.Context, actor models.Actor, status models.RequestStatus) ([]models.ServiceRequest, error) {
	if err := permission.CanCreate(actor); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, apperrors.Validation(fmt.Sprintf("unknown status '%s'", status))
	}

	filter := requestRepo.ListFilter{Status: status, Limit: 100}
	provider, err := s.actorProvider(ctx, actor)
	if err != nil {
		return nil, err
	}
	if provider != nil {
		filter.ProviderID = provider.ID
	} else {
		filter.UserID = actor.ID
	}
	return s.Requests.List(ctx, filter)
}

func (s *DefaultRequestService) DeleteRequest(ctx context.Context, actor models.Actor, id string) error {
	req, err := s.Requests.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := permission.CanDelete(actor, req); err != nil {
		return err
	}
	if req.Status != models.StatusPending {
		return apperrors.InvalidOperation("only pending requests can be deleted")
	}
	if err := s.Requests.DeleteIfPending(ctx, id); err != nil {
		return err
	}
	s.Logger.Info("Service request deleted", zap.String("requestId", id), zap.String("userId", actor.ID))
	return nil
}

func (s *DefaultRequestService) AcceptRequest(ctx context.Context, actor models.Actor, id string) (*models.ServiceRequest, error) {
	req, err := s.Requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	provider, err := s.actorProvider(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := permission.CanAccept(actor, provider); err != nil {
		return nil, err
	}

	res, err := s.Lifecycle.Apply(ctx, req, lifecycle.EventAccept, lifecycle.Input{ProviderID: provider.ID, ActorID: actor.ID})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, res.Request.UserID, res.Request, lifecycle.EventAccept)
	if s.Reminders != nil {
		if err := s.Reminders.ScheduleVisitReminder(ctx, res.Request, provider.UserID); err != nil {
			s.Logger.Warn("Failed to schedule visit reminder", zap.String("requestId", id), zap.Error(err))
		}
	}
	return res.Request, nil
}

// RejectRequest records that a provider passed on a pending request. A
// repeated rejection by the same provider is acknowledged without change.
func (s *DefaultRequestService) RejectRequest(ctx context.Context, actor models.Actor, id, reason string) (*models.ServiceRequest, error) {
	req, err := s.Requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	provider, err := s.actorProvider(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := permission.CanReject(actor, provider); err != nil {
		return nil, err
	}

	res, err := s.Lifecycle.Apply(ctx, req, lifecycle.EventReject, lifecycle.Input{ProviderID: provider.ID, Reason: reason})
	if err != nil {
		return nil, err
	}
	if res.Changed {
		s.notify(ctx, res.Request.UserID, res.Request, lifecycle.EventReject)
	}
	return res.Request, nil
}

// work runs start, complete and restart, which share their permission.
func (s *DefaultRequestService) work(ctx context.Context, actor models.Actor, id string, event lifecycle.Event, in lifecycle.Input) (*models.ServiceRequest, error) {
	req, err := s.Requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	provider, err := s.actorProvider(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := permission.CanWork(actor, provider, req); err != nil {
		return nil, err
	}

	in.ProviderID = workerID(actor, provider)
	in.ActorID = actor.ID
	res, err := s.Lifecycle.Apply(ctx, req, event, in)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, res.Request.UserID, res.Request, event)
	return res.Request, nil
}

func (s *DefaultRequestService) StartRequest(ctx context.Context, actor models.Actor, id string) (*models.ServiceRequest, error) {
	return s.work(ctx, actor, id, lifecycle.EventStart, lifecycle.Input{})
}

func (s *DefaultRequestService) CompleteRequest(ctx context.Context, actor models.Actor, id string, completion models.CompletionData) (*models.ServiceRequest, error) {
	if err := validation.ValidateStruct(completion); err != nil {
		return nil, err
	}
	in := lifecycle.Input{}
	if completion.Notes != "" || len(completion.Images) > 0 {
		in.Completion = &completion
	}
	return s.work(ctx, actor, id, lifecycle.EventComplete, in)
}

func (s *DefaultRequestService) RestartRequest(ctx context.Context, actor models.Actor, id string) (*models.ServiceRequest, error) {
	return s.work(ctx, actor, id, lifecycle.EventRestart, lifecycle.Input{})
}

// ApproveCompletion closes the request and credits the provider with a
// completed job.
func (s *DefaultRequestService) ApproveCompletion(ctx context.Context, actor models.Actor, id string) (*models.ServiceRequest, error) {
	req, err := s.Requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := permission.CanReviewWork(actor, req); err != nil {
		return nil, err
	}

	res, err := s.Lifecycle.Apply(ctx, req, lifecycle.EventApprove, lifecycle.Input{ActorID: actor.ID})
	if err != nil {
		return nil, err
	}
	// The approval is committed; a counter failure is logged, not returned.
	if err := s.recordCompletedJob(ctx, res.Request.AssignedProvider); err != nil {
		s.Logger.Error("Approved request but failed to count completed job",
			zap.String("requestId", id),
			zap.String("providerId", res.Request.AssignedProvider),
			zap.Error(err),
		)
	}

	s.notifyProvider(ctx, res.Request.AssignedProvider, res.Request, lifecycle.EventApprove)
	return res.Request, nil
}

func (s *DefaultRequestService) recordCompletedJob(ctx context.Context, providerID string) error {
	var err error
	for attempt := 1; attempt <= completedJobAttempts; attempt++ {
		if err = s.Ratings.IncrementCompletedJobs(ctx, providerID); err == nil {
			return nil
		}
		if errors.Is(err, apperrors.ErrNotFound) || ctx.Err() != nil {
			return err
		}
		s.Logger.Warn("Retrying completed job count",
			zap.String("providerId", providerID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	return err
}

func (s *DefaultRequestService) RequestRevision(ctx context.Context, actor models.Actor, id, notes string) (*models.ServiceRequest, error) {
	req, err := s.Requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := permission.CanReviewWork(actor, req); err != nil {
		return nil, err
	}

	res, err := s.Lifecycle.Apply(ctx, req, lifecycle.EventRequestRevision, lifecycle.Input{ActorID: actor.ID, Notes: notes})
	if err != nil {
		return nil, err
	}
	s.notifyProvider(ctx, res.Request.AssignedProvider, res.Request, lifecycle.EventRequestRevision)
	return res.Request, nil
}

func (s *DefaultRequestService) CancelRequest(ctx context.Context, actor models.Actor, id, reason string) (*models.ServiceRequest, error) {
	req, err := s.Requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	provider, err := s.actorProvider(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := permission.CanCancel(actor, provider, req); err != nil {
		return nil, err
	}

	assigned := req.AssignedProvider
	res, err := s.Lifecycle.Apply(ctx, req, lifecycle.EventCancel, lifecycle.Input{ActorID: actor.ID, Reason: reason})
	if err != nil {
		return nil, err
	}

	if req.UserID != actor.ID {
		s.notify(ctx, req.UserID, res.Request, lifecycle.EventCancel)
	}
	if assigned != "" && (provider == nil || provider.ID != assigned) {
		s.notifyProvider(ctx, assigned, res.Request, lifecycle.EventCancel)
	}
	return res.Request, nil
}

func (s *DefaultRequestService) AttachImages(ctx context.Context, actor models.Actor, id string, files []Upload) (*models.ServiceRequest, error) {
	if len(files) == 0 {
		return nil, apperrors.Validation("at least one image is required")
	}
	if s.Media == nil {
		return nil, apperrors.InvalidOperation(media.ErrDisabled.Error())
	}
	req, err := s.Requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	provider, err := s.actorProvider(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := permission.CanAttachMedia(actor, provider, req); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := s.Media.UploadImage(ctx, "requests/"+id, f.Filename, f.Content)
		if errors.Is(err, media.ErrDisabled) {
			return nil, apperrors.InvalidOperation(err.Error())
		}
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	if err := s.Requests.AddImages(ctx, id, urls); err != nil {
		return nil, err
	}
	return s.Requests.GetByID(ctx, id)
}

func (s *DefaultRequestService) FindMatchingProviders(ctx context.Context, actor models.Actor, id string, criteria models.MatchCriteria) ([]models.MatchedProvider, error) {
	req, err := s.Requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := permission.CanMatch(actor, req); err != nil {
		return nil, err
	}
	return s.Matcher.Match(ctx, req, criteria)
}

// notify pushes an event message to a user. Failures are logged only.
func (s *DefaultRequestService) notify(ctx context.Context, userID string, req *models.ServiceRequest, event lifecycle.Event) {
	if s.Notifier == nil || userID == "" {
		return
	}
	title, body := notification.RequestEventMessage(req, string(event))
	data := notification.RequestEventData(req, string(event))
	if err := s.Notifier.SendUserPushNotification(ctx, userID, title, body, data); err != nil {
		s.Logger.Warn("Failed to send request notification",
			zap.String("requestId", req.ID),
			zap.String("userId", userID),
			zap.String("event", string(event)),
			zap.Error(err),
		)
	}
}

func (s *DefaultRequestService) notifyProvider(ctx context.Context, providerID string, req *models.ServiceRequest, event lifecycle.Event) {
	if s.Notifier == nil || providerID == "" {
		return
	}
	p, err := s.Providers.GetByID(ctx, providerID)
	if err != nil {
		s.Logger.Warn("Cannot notify provider", zap.String("providerId", providerID), zap.Error(err))
		return
	}
	s.notify(ctx, p.UserID, req, event)
}
