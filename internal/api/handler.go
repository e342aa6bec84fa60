package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/observatory-hq/observatory/internal/attend"
	"github.com/observatory-hq/observatory/internal/db"
	"github.com/observatory-hq/observatory/internal/grades"
	"github.com/observatory-hq/observatory/internal/probe"
)

// Options carries the deployment knobs the handler needs beyond its
// collaborators.
type Options struct {
	// BaseURL is the externally visible root, used in feed links.
	BaseURL string
	// SecureCookies marks identity cookies Secure. Off for local runs.
	SecureCookies bool
}

// Handler owns every route of the application. It holds the repositories
// plus the attendance, grading, and cookie machinery the routes share.
type Handler struct {
	repos   *db.Repositories
	codes   *attend.CodeService
	ledger  *attend.Ledger
	grades  *grades.Aggregator
	commits probe.CommitSource
	codec   *secureCookieCodec
	audit   *AuditLog
	options Options
}

func NewHandler(database *gorm.DB, secretKey []byte, commits probe.CommitSource, audit *AuditLog, options Options) (*Handler, error) {
	codec, err := newSecureCookieCodec(secretKey)
	if err != nil {
		return nil, fmt.Errorf("init cookie codec: %w", err)
	}

	repos := db.NewRepositories(database)
	codes := attend.NewCodeService(repos.Events, repos.Meetings)

	return &Handler{
		repos:   repos,
		codes:   codes,
		ledger:  attend.NewLedger(codes, repos.Groups, repos.Attendances),
		grades:  grades.NewAggregator(repos.Groups, repos.Projects, repos.Meetings, repos.Events, repos.Attendances, commits),
		commits: commits,
		codec:   codec,
		audit:   audit,
		options: options,
	}, nil
}

// mintInsertAttempts bounds how often a handler re-mints after losing
// the window between Mint checking a code and its own insert landing.
const mintInsertAttempts = 8

// mintAndInsert mints a code and hands it to insert. When the insert
// trips a unique index a concurrent caller claimed the code first, so
// the loop mints a fresh one and tries again.
func (handler *Handler) mintAndInsert(insert func(code string) error) error {
	for attempt := 1; ; attempt++ {
		code, err := handler.codes.Mint()
		if err != nil {
			return err
		}
		err = insert(code)
		if err == nil {
			return nil
		}
		if !db.IsUniqueViolation(err) || attempt >= mintInsertAttempts {
			return err
		}
	}
}

// redirect issues the 303 every successful form submission ends with, so
// a browser refresh never replays the mutation.
func redirect(c *fiber.Ctx, location string) error {
	return c.Redirect(location, fiber.StatusSeeOther)
}

func redirectWithError(c *fiber.Ctx, location string, formError FormError) error {
	return redirect(c, location+"?e="+formError.String())
}

func (handler *Handler) internalError(c *fiber.Ctx, operation string, err error) error {
	if user, ok := currentUser(c); ok {
		handler.audit.Record(user.ID, "%s failed: %v", operation, err)
	}
	return fiber.NewError(fiber.StatusInternalServerError, operation+" failed")
}
