package application

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hobbyhub/gateway/internal/domain/entity"
	"github.com/hobbyhub/gateway/internal/domain/listing"
	repo "github.com/hobbyhub/gateway/internal/domain/repository"
)

// AnonymousName is shown for comments posted without a session or a name.
const AnonymousName = "Anonymous"

type CommentService struct {
	Repo     repo.CommentRepository
	Articles repo.ArticleRepository
	Activity *ActivityRecorder
	Notifier *Notifier
	Guard    *Guard
	Logger   *logrus.Logger
	Now      func() time.Time
}

func NewCommentService(r repo.CommentRepository, articles repo.ArticleRepository, activity *ActivityRecorder, notifier *Notifier, guard *Guard, logger *logrus.Logger) *CommentService {
	return &CommentService{
		Repo:     r,
		Articles: articles,
		Activity: activity,
		Notifier: notifier,
		Guard:    guard,
		Logger:   logger,
		Now:      time.Now,
	}
}

// List returns the article's comments, oldest first.
func (s *CommentService) List(ctx context.Context, articleID string) ([]entity.Comment, error) {
	items, err := s.Repo.List(ctx, articleID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		ti, _ := listing.ParseDate(items[i].Timestamp, time.UTC)
		tj, _ := listing.ParseDate(items[j].Timestamp, time.UTC)
		return ti.Before(tj)
	})
	return items, nil
}

// Create posts a comment. Visitors without a session may comment under the
// name they typed, or AnonymousName.
func (s *CommentService) Create(ctx context.Context, user *entity.User, articleID string, form *CommentForm) (Outcome[entity.Comment], error) {
	f := newFlow()
	// visitors share no identity, so only signed-in users are guarded
	if user != nil {
		release, err := s.Guard.Acquire(guardKey(user.Email, "comment.create", articleID))
		if err != nil {
			return Outcome[entity.Comment]{}, f.fail(err, ClassifyWrite(err))
		}
		defer release()
	}

	f.enter(PhaseValidating)
	if err := validateForm(form, &form.Text, &form.Name); err != nil {
		return Outcome[entity.Comment]{}, f.fail(err, ClassifyWrite(err))
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	c := entity.Comment{
		ArticleID:  articleID,
		Text:       form.Text,
		AuthorName: form.Name,
		Timestamp:  now().UTC().Format(time.RFC3339),
	}
	if user != nil {
		c.AuthorName = user.Name()
		c.AuthorEmail = user.Email
		c.AuthorImage = user.PhotoURL
	}
	if c.AuthorName == "" {
		c.AuthorName = AnonymousName
	}

	f.enter(PhaseSubmitting)
	if err := s.Repo.Create(ctx, user, &c); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("article_id", articleID).Error("comment create failed")
		}
		err = f.fail(err, ClassifyWrite(err))
		s.Activity.Record(ctx, user, "create", "comment", "", err)
		return Outcome[entity.Comment]{}, err
	}
	s.Activity.Record(ctx, user, "create", "comment", c.ID, nil)
	if s.Articles != nil {
		if a, err := s.Articles.Get(ctx, articleID); err == nil {
			s.Notifier.ArticleCommented(ctx, *a, c)
		}
	}
	form.Reset()
	return succeed(f, c, successDialog("Your comment has been posted.")), nil
}

func (s *CommentService) Delete(ctx context.Context, user *entity.User, articleID, commentID string, confirmed bool) (Outcome[struct{}], error) {
	f := newFlow()
	if user == nil {
		return Outcome[struct{}]{}, f.fail(ErrLoginRequired, authDialog())
	}
	if !confirmed {
		return Outcome[struct{}]{}, f.fail(ErrConfirmationRequired, confirmDialog("Delete this comment?"))
	}
	release, err := s.Guard.Acquire(guardKey(user.Email, "comment.delete", commentID))
	if err != nil {
		return Outcome[struct{}]{}, f.fail(err, ClassifyDelete(err))
	}
	defer release()

	f.enter(PhaseSubmitting)
	if err := s.Repo.Delete(ctx, user, articleID, commentID); err != nil {
		err = f.fail(err, ClassifyDelete(err))
		s.Activity.Record(ctx, user, "delete", "comment", commentID, err)
		return Outcome[struct{}]{}, err
	}
	s.Activity.Record(ctx, user, "delete", "comment", commentID, nil)
	out := succeed(f, struct{}{}, successDialog("The comment has been deleted."))
	out.RemovedID = commentID
	return out, nil
}
