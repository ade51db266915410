package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hobbyhub/gateway/internal/domain/entity"
	"github.com/hobbyhub/gateway/internal/domain/listing"
	repo "github.com/hobbyhub/gateway/internal/domain/repository"
	"github.com/hobbyhub/gateway/pkg/helpers"
)

const (
	RedirectAfterGroupCreate = "/myGroup"
	RedirectAfterGroupUpdate = "/myGroup"
)

type GroupService struct {
	Repo     repo.GroupRepository
	Uploader ImageUploader
	Activity *ActivityRecorder
	Notifier *Notifier
	Guard    *Guard
	Logger   *logrus.Logger
	Now      func() time.Time
}

func NewGroupService(r repo.GroupRepository, up ImageUploader, activity *ActivityRecorder, notifier *Notifier, guard *Guard, logger *logrus.Logger) *GroupService {
	return &GroupService{
		Repo:     r,
		Uploader: up,
		Activity: activity,
		Notifier: notifier,
		Guard:    guard,
		Logger:   logger,
		Now:      time.Now,
	}
}

func (s *GroupService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// List returns the groups matching f, soonest first.
func (s *GroupService) List(ctx context.Context, f listing.GroupFilter) ([]entity.Group, error) {
	items, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if f.Now.IsZero() {
		f.Now = s.now()
	}
	out := listing.FilterGroups(items, f)
	listing.SortGroupsByDate(out)
	return out, nil
}

func (s *GroupService) Get(ctx context.Context, id string) (*entity.Group, error) {
	return s.Repo.Get(ctx, id)
}

// MyGroups lists the groups created by user.
func (s *GroupService) MyGroups(ctx context.Context, user *entity.User) ([]entity.Group, error) {
	if user == nil {
		return nil, ErrLoginRequired
	}
	items, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Group, 0)
	for _, g := range items {
		if g.OwnedBy(user.Email) {
			out = append(out, g)
		}
	}
	return out, nil
}

// JoinedGroups resolves the user's memberships into full group documents.
func (s *GroupService) JoinedGroups(ctx context.Context, user *entity.User) ([]entity.Group, error) {
	if user == nil {
		return nil, ErrLoginRequired
	}
	joined, err := s.Repo.JoinedBy(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(joined))
	seen := map[string]bool{}
	for _, j := range joined {
		if j.GroupID != "" && !seen[j.GroupID] {
			seen[j.GroupID] = true
			ids = append(ids, j.GroupID)
		}
	}
	return s.Repo.GetByIDs(ctx, ids)
}

// Create validates the form, uploads the image when one is selected, and posts
// the group with the creator's identity. The form is reset on success.
func (s *GroupService) Create(ctx context.Context, user *entity.User, form *GroupForm) (Outcome[entity.Group], error) {
	f := newFlow()
	if user == nil {
		return Outcome[entity.Group]{}, f.fail(ErrLoginRequired, authDialog())
	}
	release, err := s.Guard.Acquire(guardKey(user.Email, "group.create", ""))
	if err != nil {
		return Outcome[entity.Group]{}, f.fail(err, ClassifyWrite(err))
	}
	defer release()

	f.enter(PhaseValidating)
	if err := validateForm(form, &form.GroupName, &form.Description, &form.Location, &form.Category); err != nil {
		return Outcome[entity.Group]{}, f.fail(err, ClassifyWrite(err))
	}

	image, err := uploadSelected(ctx, f, s.Uploader, &form.Image)
	if err != nil {
		s.logFailure("group.create", user, err)
		return Outcome[entity.Group]{}, f.fail(err, ClassifyWrite(err))
	}
	if image == "" {
		image = form.ExistingImage
	}

	g := entity.Group{
		GroupName:     form.GroupName,
		Description:   form.Description,
		Location:      form.Location,
		MaxMembers:    form.MaxMembers,
		Image:         image,
		FormattedDate: form.FormattedDate,
		FormatHour:    form.FormatHour,
		Day:           form.Day,
		Category:      form.Category,
		UserEmail:     user.Email,
		CreatorName:   user.Name(),
		CreatorImage:  user.PhotoURL,
	}
	f.enter(PhaseSubmitting)
	err = s.Repo.Create(ctx, user, &g)
	if err != nil {
		s.logFailure("group.create", user, err)
		err = f.fail(err, ClassifyWrite(err))
		s.Activity.Record(ctx, user, "create", "group", "", err)
		return Outcome[entity.Group]{}, err
	}
	s.Activity.Record(ctx, user, "create", "group", g.ID, nil)
	form.Reset()
	out := succeed(f, g, successDialog("Your group has been created."))
	out.Redirect = RedirectAfterGroupCreate
	return out, nil
}

// Edit loads the group and returns a form pre-populated with its values.
func (s *GroupService) Edit(ctx context.Context, id string) (*GroupForm, *entity.Group, error) {
	g, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return &GroupForm{
		GroupName:     g.GroupName,
		Description:   g.Description,
		Location:      g.Location,
		MaxMembers:    g.MaxMembers,
		FormattedDate: g.FormattedDate,
		FormatHour:    g.FormatHour,
		Day:           g.Day,
		Category:      g.Category,
		ExistingImage: g.Image,
	}, g, nil
}

// Update replaces the group's editable fields with the submitted form. The
// stored image is kept unless a new one is chosen or the form names another.
func (s *GroupService) Update(ctx context.Context, user *entity.User, id string, form *GroupForm) (Outcome[entity.Group], error) {
	f := newFlow()
	if user == nil {
		return Outcome[entity.Group]{}, f.fail(ErrLoginRequired, authDialog())
	}
	release, err := s.Guard.Acquire(guardKey(user.Email, "group.update", id))
	if err != nil {
		return Outcome[entity.Group]{}, f.fail(err, ClassifyWrite(err))
	}
	defer release()

	current, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Outcome[entity.Group]{}, f.fail(err, ClassifyWrite(err))
	}
	if form.ExistingImage == "" {
		form.ExistingImage = current.Image
	}

	f.enter(PhaseValidating)
	if err := validateForm(form, &form.GroupName, &form.Description, &form.Location, &form.Category); err != nil {
		return Outcome[entity.Group]{}, f.fail(err, ClassifyWrite(err))
	}
	image, err := uploadSelected(ctx, f, s.Uploader, &form.Image)
	if err != nil {
		s.logFailure("group.update", user, err)
		return Outcome[entity.Group]{}, f.fail(err, ClassifyWrite(err))
	}
	if image == "" {
		image = form.ExistingImage
	}

	g := *current
	g.GroupName = form.GroupName
	g.Description = form.Description
	g.Location = form.Location
	g.MaxMembers = form.MaxMembers
	g.FormattedDate = form.FormattedDate
	g.FormatHour = form.FormatHour
	g.Day = form.Day
	g.Category = form.Category
	g.Image = image

	f.enter(PhaseSubmitting)
	if err := s.Repo.Update(ctx, user, &g); err != nil {
		s.logFailure("group.update", user, err)
		err = f.fail(err, ClassifyWrite(err))
		s.Activity.Record(ctx, user, "update", "group", id, err)
		return Outcome[entity.Group]{}, err
	}
	s.Activity.Record(ctx, user, "update", "group", id, nil)
	form.Reset()
	out := succeed(f, g, successDialog("Your group has been updated."))
	out.Redirect = RedirectAfterGroupUpdate
	return out, nil
}

// Delete removes a group once the user has confirmed. A group that is already
// gone counts as deleted.
func (s *GroupService) Delete(ctx context.Context, user *entity.User, id string, confirmed bool) (Outcome[struct{}], error) {
	f := newFlow()
	if user == nil {
		return Outcome[struct{}]{}, f.fail(ErrLoginRequired, authDialog())
	}
	if !confirmed {
		return Outcome[struct{}]{}, f.fail(ErrConfirmationRequired, confirmDialog("Delete this group? This cannot be undone."))
	}
	release, err := s.Guard.Acquire(guardKey(user.Email, "group.delete", id))
	if err != nil {
		return Outcome[struct{}]{}, f.fail(err, ClassifyDelete(err))
	}
	defer release()

	f.enter(PhaseSubmitting)
	if err := s.Repo.Delete(ctx, user, id); err != nil {
		s.logFailure("group.delete", user, err)
		err = f.fail(err, ClassifyDelete(err))
		s.Activity.Record(ctx, user, "delete", "group", id, err)
		return Outcome[struct{}]{}, err
	}
	s.Activity.Record(ctx, user, "delete", "group", id, nil)
	out := succeed(f, struct{}{}, successDialog("The group has been deleted."))
	out.RemovedID = id
	return out, nil
}

// Join adds user to the group and lets the creator know.
func (s *GroupService) Join(ctx context.Context, user *entity.User, id string) (Outcome[entity.JoinedGroup], error) {
	f := newFlow()
	if user == nil {
		return Outcome[entity.JoinedGroup]{}, f.fail(ErrLoginRequired, authDialog())
	}
	release, err := s.Guard.Acquire(guardKey(user.Email, "group.join", id))
	if err != nil {
		return Outcome[entity.JoinedGroup]{}, f.fail(err, ClassifyWrite(err))
	}
	defer release()

	g, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Outcome[entity.JoinedGroup]{}, f.fail(err, ClassifyWrite(err))
	}
	jg := entity.JoinedGroup{
		GroupID:   g.ID,
		GroupName: g.GroupName,
		UserEmail: user.Email,
		JoinedAt:  s.now().UTC().Format(time.RFC3339),
	}
	f.enter(PhaseSubmitting)
	if err := s.Repo.Join(ctx, user, jg); err != nil {
		s.logFailure("group.join", user, err)
		err = f.fail(err, ClassifyWrite(err))
		s.Activity.Record(ctx, user, "join", "group", id, err)
		return Outcome[entity.JoinedGroup]{}, err
	}
	s.Activity.Record(ctx, user, "join", "group", id, nil)
	s.Notifier.GroupJoined(ctx, *g, user)
	return succeed(f, jg, successDialog("You joined "+g.GroupName+".")), nil
}

// Leave removes user's membership after confirmation.
func (s *GroupService) Leave(ctx context.Context, user *entity.User, id string, confirmed bool) (Outcome[struct{}], error) {
	f := newFlow()
	if user == nil {
		return Outcome[struct{}]{}, f.fail(ErrLoginRequired, authDialog())
	}
	if !confirmed {
		return Outcome[struct{}]{}, f.fail(ErrConfirmationRequired, confirmDialog("Leave this group?"))
	}
	release, err := s.Guard.Acquire(guardKey(user.Email, "group.leave", id))
	if err != nil {
		return Outcome[struct{}]{}, f.fail(err, ClassifyDelete(err))
	}
	defer release()

	f.enter(PhaseSubmitting)
	if err := s.Repo.Leave(ctx, user, id); err != nil {
		s.logFailure("group.leave", user, err)
		err = f.fail(err, ClassifyDelete(err))
		s.Activity.Record(ctx, user, "leave", "group", id, err)
		return Outcome[struct{}]{}, err
	}
	s.Activity.Record(ctx, user, "leave", "group", id, nil)
	out := succeed(f, struct{}{}, successDialog("You left the group."))
	out.RemovedID = id
	return out, nil
}

func (s *GroupService) logFailure(op string, user *entity.User, err error) {
	helpers.LogError(s.Logger, "group flow failed", err, logrus.Fields{"op": op, "email": user.Email})
}
