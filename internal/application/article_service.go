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

const RedirectAfterArticleSave = "/myArticles"

type ArticleService struct {
	Repo     repo.ArticleRepository
	Uploader ImageUploader
	Search   *ArticleSearch
	Activity *ActivityRecorder
	Guard    *Guard
	Logger   *logrus.Logger
	Now      func() time.Time
}

func NewArticleService(r repo.ArticleRepository, up ImageUploader, search *ArticleSearch, activity *ActivityRecorder, guard *Guard, logger *logrus.Logger) *ArticleService {
	return &ArticleService{
		Repo:     r,
		Uploader: up,
		Search:   search,
		Activity: activity,
		Guard:    guard,
		Logger:   logger,
		Now:      time.Now,
	}
}

func (s *ArticleService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// List returns the articles matching f, newest first.
func (s *ArticleService) List(ctx context.Context, f listing.ArticleFilter) ([]entity.Article, error) {
	items, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := listing.FilterArticles(items, f)
	listing.SortArticlesNewest(out)
	return out, nil
}

func (s *ArticleService) Get(ctx context.Context, id string) (*entity.Article, error) {
	return s.Repo.Get(ctx, id)
}

// Categories lists the categories currently in use.
func (s *ArticleService) Categories(ctx context.Context) ([]string, error) {
	items, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return listing.Categories(items), nil
}

func (s *ArticleService) MyArticles(ctx context.Context, user *entity.User) ([]entity.Article, error) {
	if user == nil {
		return nil, ErrLoginRequired
	}
	items, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Article, 0)
	for _, a := range items {
		if a.OwnedBy(user.Email) {
			out = append(out, a)
		}
	}
	listing.SortArticlesNewest(out)
	return out, nil
}

// SearchArticles queries the search index when one is configured and falls
// back to filtering the fetched collection otherwise.
func (s *ArticleService) SearchArticles(ctx context.Context, query, category string, size int) ([]entity.Article, error) {
	if s.Search.Enabled() {
		hits, err := s.Search.Search(ctx, query, size)
		if err == nil {
			return listing.FilterArticles(hits, listing.ArticleFilter{Category: category}), nil
		}
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("article search index failed; filtering collection instead")
		}
	}
	out, err := s.List(ctx, listing.ArticleFilter{Category: category, Query: query})
	if err != nil {
		return nil, err
	}
	if size > 0 && len(out) > size {
		out = out[:size]
	}
	return out, nil
}

func (s *ArticleService) Create(ctx context.Context, user *entity.User, form *ArticleForm) (Outcome[entity.Article], error) {
	f := newFlow()
	if user == nil {
		return Outcome[entity.Article]{}, f.fail(ErrLoginRequired, authDialog())
	}
	release, err := s.Guard.Acquire(guardKey(user.Email, "article.create", ""))
	if err != nil {
		return Outcome[entity.Article]{}, f.fail(err, ClassifyWrite(err))
	}
	defer release()

	f.enter(PhaseValidating)
	if err := validateForm(form, &form.Title, &form.ShortDescription, &form.Content, &form.Category); err != nil {
		return Outcome[entity.Article]{}, f.fail(err, ClassifyWrite(err))
	}
	cover, err := uploadSelected(ctx, f, s.Uploader, &form.CoverImage)
	if err != nil {
		s.logFailure("article.create", user, err)
		return Outcome[entity.Article]{}, f.fail(err, ClassifyWrite(err))
	}
	if cover == "" {
		cover = form.ExistingCover
	}
	category := form.Category
	if category == "" {
		category = entity.DefaultCategory
	}

	a := entity.Article{
		Title:            form.Title,
		ShortDescription: form.ShortDescription,
		Content:          form.Content,
		CoverImage:       cover,
		Category:         category,
		AuthorName:       user.Name(),
		AuthorEmail:      user.Email,
		AuthorImage:      user.PhotoURL,
		PublishDate:      s.now().UTC().Format(time.RFC3339),
	}
	f.enter(PhaseSubmitting)
	if err := s.Repo.Create(ctx, user, &a); err != nil {
		s.logFailure("article.create", user, err)
		err = f.fail(err, ClassifyWrite(err))
		s.Activity.Record(ctx, user, "create", "article", "", err)
		return Outcome[entity.Article]{}, err
	}
	s.Activity.Record(ctx, user, "create", "article", a.ID, nil)
	s.Search.Index(ctx, a)
	form.Reset()
	out := succeed(f, a, successDialog("Your article has been published."))
	out.Redirect = RedirectAfterArticleSave
	return out, nil
}

// Edit loads the article and returns a pre-populated form.
func (s *ArticleService) Edit(ctx context.Context, id string) (*ArticleForm, *entity.Article, error) {
	a, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return &ArticleForm{
		Title:            a.Title,
		ShortDescription: a.ShortDescription,
		Content:          a.Content,
		Category:         a.Category,
		ExistingCover:    a.CoverImage,
	}, a, nil
}

func (s *ArticleService) Update(ctx context.Context, user *entity.User, id string, form *ArticleForm) (Outcome[entity.Article], error) {
	f := newFlow()
	if user == nil {
		return Outcome[entity.Article]{}, f.fail(ErrLoginRequired, authDialog())
	}
	release, err := s.Guard.Acquire(guardKey(user.Email, "article.update", id))
	if err != nil {
		return Outcome[entity.Article]{}, f.fail(err, ClassifyWrite(err))
	}
	defer release()

	current, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Outcome[entity.Article]{}, f.fail(err, ClassifyWrite(err))
	}
	if form.ExistingCover == "" {
		form.ExistingCover = current.CoverImage
	}

	f.enter(PhaseValidating)
	if err := validateForm(form, &form.Title, &form.ShortDescription, &form.Content, &form.Category); err != nil {
		return Outcome[entity.Article]{}, f.fail(err, ClassifyWrite(err))
	}
	cover, err := uploadSelected(ctx, f, s.Uploader, &form.CoverImage)
	if err != nil {
		s.logFailure("article.update", user, err)
		return Outcome[entity.Article]{}, f.fail(err, ClassifyWrite(err))
	}
	if cover == "" {
		cover = form.ExistingCover
	}

	a := *current
	a.Title = form.Title
	a.ShortDescription = form.ShortDescription
	a.Content = form.Content
	a.Category = form.Category
	a.CoverImage = cover

	f.enter(PhaseSubmitting)
	if err := s.Repo.Update(ctx, user, &a); err != nil {
		s.logFailure("article.update", user, err)
		err = f.fail(err, ClassifyWrite(err))
		s.Activity.Record(ctx, user, "update", "article", id, err)
		return Outcome[entity.Article]{}, err
	}
	s.Activity.Record(ctx, user, "update", "article", id, nil)
	s.Search.Index(ctx, a)
	form.Reset()
	out := succeed(f, a, successDialog("Your article has been updated."))
	out.Redirect = RedirectAfterArticleSave
	return out, nil
}

func (s *ArticleService) Delete(ctx context.Context, user *entity.User, id string, confirmed bool) (Outcome[struct{}], error) {
	f := newFlow()
	if user == nil {
		return Outcome[struct{}]{}, f.fail(ErrLoginRequired, authDialog())
	}
	if !confirmed {
		return Outcome[struct{}]{}, f.fail(ErrConfirmationRequired, confirmDialog("Delete this article? This cannot be undone."))
	}
	release, err := s.Guard.Acquire(guardKey(user.Email, "article.delete", id))
	if err != nil {
		return Outcome[struct{}]{}, f.fail(err, ClassifyDelete(err))
	}
	defer release()

	f.enter(PhaseSubmitting)
	if err := s.Repo.Delete(ctx, user, id); err != nil {
		s.logFailure("article.delete", user, err)
		err = f.fail(err, ClassifyDelete(err))
		s.Activity.Record(ctx, user, "delete", "article", id, err)
		return Outcome[struct{}]{}, err
	}
	s.Activity.Record(ctx, user, "delete", "article", id, nil)
	s.Search.Remove(ctx, id)
	out := succeed(f, struct{}{}, successDialog("The article has been deleted."))
	out.RemovedID = id
	return out, nil
}

func (s *ArticleService) logFailure(op string, user *entity.User, err error) {
	helpers.LogError(s.Logger, "article flow failed", err, logrus.Fields{"op": op, "email": user.Email})
}
