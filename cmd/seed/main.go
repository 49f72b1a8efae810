package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-todo/config"
	"github.com/oksasatya/go-ddd-todo/internal/application"
	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
	"github.com/oksasatya/go-ddd-todo/internal/domain/repository"
	"github.com/oksasatya/go-ddd-todo/internal/infrastructure/redisstore"
	"github.com/oksasatya/go-ddd-todo/internal/infrastructure/store"
	"github.com/oksasatya/go-ddd-todo/pkg/helpers"
)

const demoList = "Getting started"

func main() {
	email := flag.String("email", "demo@example.com", "demo user email")
	name := flag.String("name", "Demo User", "demo user name")
	issueToken := flag.Bool("token", false, "open a session in Redis and print an access token")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	records, err := store.Open(ctx, cfg, logger, true)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer records.Close()

	user, created, err := ensureUser(ctx, records.Users, *email, *name)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	if created {
		fmt.Printf("seeded user: id=%s email=%s name=%s\n", user.ID, user.Email, user.Name)
	} else {
		fmt.Printf("user already present: id=%s email=%s\n", user.ID, user.Email)
	}

	lists, err := records.Lists.ListByUser(ctx, user.ID)
	if err != nil {
		log.Fatalf("failed to read lists: %v", err)
	}
	for _, l := range lists {
		if l.Name == demoList {
			fmt.Printf("list %q already present: id=%s\n", demoList, l.ID)
			maybeToken(ctx, cfg, records, user, *issueToken)
			return
		}
	}

	list := &entity.List{Name: demoList, UserID: user.ID}
	if err := list.Normalize(); err != nil {
		log.Fatalf("invalid list: %v", err)
	}
	if err := records.Lists.Create(ctx, list); err != nil {
		log.Fatalf("failed to seed list: %v", err)
	}
	fmt.Printf("seeded list: id=%s name=%s\n", list.ID, list.Name)

	tomorrow := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	note := "Sub-steps live inside the task"
	tasks := []entity.Task{
		{Title: "Create your first list"},
		{Title: "Add a task with a due date", DueDate: &tomorrow},
		{Title: "Break work into subtasks", Description: &note, Subtasks: []entity.Subtask{
			{Title: "Open the task"},
			{Title: "Add a subtask"},
			{Title: "Tick it off", Completed: true},
		}},
	}
	for i := range tasks {
		t := &tasks[i]
		t.UserID, t.ListID = user.ID, list.ID
		if err := t.Normalize(); err != nil {
			log.Fatalf("invalid task %q: %v", t.Title, err)
		}
		if err := records.Tasks.Create(ctx, t); err != nil {
			log.Fatalf("failed to seed task %q: %v", t.Title, err)
		}
		fmt.Printf("seeded task: id=%s title=%s\n", t.ID, t.Title)
	}
	maybeToken(ctx, cfg, records, user, *issueToken)
}

// ensureUser returns the user with email, creating it only when missing so a
// re-run never overwrites a profile filled in by a real sign-in.
func ensureUser(ctx context.Context, users repository.UserRepository, email, name string) (*entity.User, bool, error) {
	u, err := users.GetByEmail(ctx, email)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}
	u = &entity.User{Email: email, Name: name, LastLoginAt: time.Now().UTC()}
	if err := users.UpsertByEmail(ctx, u); err != nil {
		return nil, false, err
	}
	return u, true, nil
}

func maybeToken(ctx context.Context, cfg *config.Config, records *store.Store, user *entity.User, issue bool) {
	if !issue {
		return
	}
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()
	jwt := helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	auth := application.NewAuthService(records.Users, nil, redisstore.NewSessionStore(rdb), jwt, nil, nil, cfg.SessionTTL)
	pair, err := auth.IssueTokens(ctx, user)
	if err != nil {
		log.Fatalf("failed to open session: %v", err)
	}
	fmt.Printf("access token (expires %s):\n%s\n", pair.AccessTokenExpiry.Format(time.RFC3339), pair.AccessToken)
}
