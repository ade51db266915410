package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/hobbyhub/gateway/internal/domain/entity"
	"github.com/hobbyhub/gateway/internal/domain/listing"
	repo "github.com/hobbyhub/gateway/internal/domain/repository"
)

type DashboardService struct {
	Stats    repo.StatsRepository
	Groups   repo.GroupRepository
	Articles repo.ArticleRepository
	Logger   *logrus.Logger
	Now      func() time.Time
}

func NewDashboardService(stats repo.StatsRepository, groups repo.GroupRepository, articles repo.ArticleRepository, logger *logrus.Logger) *DashboardService {
	return &DashboardService{Stats: stats, Groups: groups, Articles: articles, Logger: logger, Now: time.Now}
}

// SiteStats returns the public counters. A backend that does not publish
// dashboard stats yields an empty map.
func (s *DashboardService) SiteStats(ctx context.Context) (*entity.DashboardStats, error) {
	out := &entity.DashboardStats{Site: map[string]int{}, GeneratedAt: s.now()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.Stats.TotalUsers(gctx)
		out.TotalUsers = n
		return err
	})
	g.Go(func() error {
		m, err := s.Stats.DashboardStats(gctx)
		if err != nil {
			s.warn(err, "dashboard stats unavailable")
			return nil
		}
		out.Site = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ForUser adds the caller's own totals to the site counters. The backend
// calls run concurrently.
func (s *DashboardService) ForUser(ctx context.Context, user *entity.User) (*entity.DashboardStats, error) {
	if user == nil {
		return nil, ErrLoginRequired
	}
	var (
		groups   []entity.Group
		joined   []entity.JoinedGroup
		articles []entity.Article
		site     *entity.DashboardStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		site, err = s.SiteStats(gctx)
		return err
	})
	g.Go(func() (err error) {
		groups, err = s.Groups.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		joined, err = s.Groups.JoinedBy(gctx, user.Email)
		return err
	})
	g.Go(func() (err error) {
		articles, err = s.Articles.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now()
	for _, gr := range groups {
		if !gr.OwnedBy(user.Email) {
			continue
		}
		site.MyGroups++
		if listing.IsUpcoming(gr.FormattedDate, now) {
			site.UpcomingMine++
		}
	}
	site.JoinedGroups = len(joined)
	for _, a := range articles {
		if a.OwnedBy(user.Email) {
			site.MyArticles++
		}
	}
	return site, nil
}

func (s *DashboardService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DashboardService) warn(err error, msg string) {
	if s.Logger != nil {
		s.Logger.WithError(err).Warn(msg)
	}
}
