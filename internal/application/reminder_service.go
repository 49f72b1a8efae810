package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-todo/internal/domain/repository"
	"github.com/oksasatya/go-ddd-todo/pkg/mailer"
	mailtpl "github.com/oksasatya/go-ddd-todo/pkg/mailer/templates"
)

// ReminderService enqueues one digest email per owner with tasks due soon.
type ReminderService struct {
	Tasks   repo.TaskRepository
	Users   repo.UserRepository
	Emails  EventPublisher
	Logger  *logrus.Logger
	AppName string
	AppURL  string
	Window  time.Duration
	Now     func() time.Time
}

func NewReminderService(tasks repo.TaskRepository, users repo.UserRepository, emails EventPublisher, logger *logrus.Logger, appName, appURL string, window time.Duration) *ReminderService {
	return &ReminderService{
		Tasks:   tasks,
		Users:   users,
		Emails:  emails,
		Logger:  logger,
		AppName: appName,
		AppURL:  appURL,
		Window:  window,
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

// EnqueueDueSoon returns the number of email jobs published.
func (s *ReminderService) EnqueueDueSoon(ctx context.Context) (int, error) {
	if s.Emails == nil {
		return 0, fmt.Errorf("email queue not configured")
	}
	from := s.Now()
	tasks, err := s.Tasks.ListDueBetween(ctx, from, from.Add(s.Window))
	if err != nil {
		return 0, err
	}

	byOwner := make(map[string][]entity.Task)
	var owners []string
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		if _, seen := byOwner[t.UserID]; !seen {
			owners = append(owners, t.UserID)
		}
		byOwner[t.UserID] = append(byOwner[t.UserID], t)
	}

	sent := 0
	for _, owner := range owners {
		u, err := s.Users.GetByID(ctx, owner)
		if err != nil {
			if s.Logger != nil {
				s.Logger.WithError(err).WithField("user_id", owner).Warn("reminder owner lookup failed")
			}
			continue
		}
		items := make([]mailtpl.DueItem, 0, len(byOwner[owner]))
		for _, t := range byOwner[owner] {
			items = append(items, mailtpl.DueItem{Title: t.Title, Due: *t.DueDate})
		}
		job := mailer.EmailJob{
			To:       u.Email,
			Template: mailtpl.DueReminder,
			Data:     mailtpl.NewDueReminderData(s.AppName, s.AppURL, u.Name, u.Email, items),
		}
		if err := s.Emails.PublishJSON(ctx, job); err != nil {
			return sent, fmt.Errorf("enqueue reminder for %s: %w", owner, err)
		}
		sent++
	}
	return sent, nil
}
