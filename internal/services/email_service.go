package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"gorm.io/gorm"

	"github.com/justsurfingit/lead-labeler/internal/logger"
	"github.com/justsurfingit/lead-labeler/internal/models"
	"github.com/justsurfingit/lead-labeler/internal/predict"
)

const defaultMailbox = "me"

// EmailService pulls lead notification mails from Gmail and labels them.
type EmailService struct {
	DB          *gorm.DB
	Leads       *LeadService
	Matcher     *LeadMatcher
	GmailClient *gmail.Service

	Query      string
	ModelName  string
	Mailbox    string
	RetryDelay time.Duration

	cron *cron.Cron
	wg   sync.WaitGroup
}

func NewEmailService(db *gorm.DB, leads *LeadService, gmail *gmail.Service, matcher *LeadMatcher, query, modelName string) *EmailService {
	if matcher == nil {
		matcher = NewLeadMatcher()
	}
	return &EmailService{
		DB:          db,
		Leads:       leads,
		Matcher:     matcher,
		GmailClient: gmail,
		Query:       query,
		ModelName:   modelName,
		Mailbox:     defaultMailbox,
		RetryDelay:  time.Second,
	}
}

// StartWatcher runs a sync right away and then on every tick of schedule
// (a cron spec such as "@every 15m"). A tick that arrives while a sync is
// still running is skipped.
func (s *EmailService) StartWatcher(schedule string) error {
	if s.GmailClient == nil {
		logger.Warn("Gmail watcher disabled (no client), check credentials")
		return nil
	}

	l := cronLogger{}
	job := cron.NewChain(cron.SkipIfStillRunning(l)).Then(cron.FuncJob(s.runSync))
	c := cron.New(cron.WithLogger(l))
	if _, err := c.AddJob(schedule, job); err != nil {
		return fmt.Errorf("invalid gmail schedule %q: %w", schedule, err)
	}
	s.cron = c

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		job.Run()
	}()
	c.Start()
	logger.Info("Gmail watcher started", "schedule", schedule, "model", s.ModelName)
	return nil
}

// StopWatcher stops the schedule and waits for any running sync, the
// initial one included.
func (s *EmailService) StopWatcher() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.wg.Wait()
}

// cronLogger routes scheduler messages to the app logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

func (s *EmailService) runSync() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := s.SyncEmails(ctx); err != nil {
		logger.Error("email sync failed", "error", err)
	}
}

// SyncEmails fetches new mail since the stored bookmark and labels every lead
// notification in it. The first run, or a run whose bookmark Gmail no longer
// knows, does a full sync over Query instead. The bookmark only moves when
// every message was handled, so failed messages are fetched again next cycle.
func (s *EmailService) SyncEmails(ctx context.Context) error {
	state := models.MailboxState{Email: s.mailbox()}
	if err := s.DB.WithContext(ctx).Where(models.MailboxState{Email: state.Email}).FirstOrCreate(&state).Error; err != nil {
		return fmt.Errorf("load mailbox state: %w", err)
	}

	var (
		messages     []*gmail.Message
		unfetched    int
		newHistoryID uint64
		err          error
	)
	if state.LastHistoryID == 0 {
		logger.Info("no history bookmark, running full sync", "mailbox", state.Email)
		messages, unfetched, newHistoryID, err = s.performFullSync(ctx)
	} else {
		messages, unfetched, newHistoryID, err = s.performIncrementalSync(ctx, state.LastHistoryID)
		if err != nil && isHistoryExpiredError(err) {
			logger.Warn("history id expired, falling back to full sync", "history_id", state.LastHistoryID)
			messages, unfetched, newHistoryID, err = s.performFullSync(ctx)
		}
	}
	if err != nil {
		return err
	}

	logger.Info("processing candidate emails", "count", len(messages))

	failed := unfetched
	for _, msg := range messages {
		var count int64
		if err := s.DB.WithContext(ctx).Model(&models.ProcessedEmail{}).Where("id = ?", msg.Id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		record, err := s.processSingleEmail(ctx, msg)
		if err != nil && !isPermanentLeadError(err) {
			logger.Error("email could not be labeled, will retry", "message_id", msg.Id, "error", err)
			failed++
			continue
		}
		if err != nil {
			logger.Warn("email skipped", "message_id", msg.Id, "error", err)
		}

		processed := models.ProcessedEmail{ID: msg.Id}
		if record != nil {
			processed.RecordID = &record.ID
		}
		if err := s.DB.WithContext(ctx).Create(&processed).Error; err != nil {
			return fmt.Errorf("mark email %s processed: %w", msg.Id, err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d emails failed, bookmark kept at %d", failed, state.LastHistoryID)
	}
	if newHistoryID > state.LastHistoryID {
		if err := s.DB.WithContext(ctx).Model(&state).Update("last_history_id", newHistoryID).Error; err != nil {
			return fmt.Errorf("save history bookmark: %w", err)
		}
		logger.Info("history bookmark updated", "history_id", newHistoryID)
	}
	return nil
}

// performFullSync lists the mails matching Query and returns the mailbox's
// current history id as the new bookmark, along with how many listed mails
// could not be fetched.
func (s *EmailService) performFullSync(ctx context.Context) ([]*gmail.Message, int, uint64, error) {
	var resp *gmail.ListMessagesResponse
	err := s.retry(ctx, 3, func() error {
		var e error
		resp, e = s.GmailClient.Users.Messages.List(s.mailbox()).Q(s.Query).MaxResults(50).Context(ctx).Do()
		return e
	})
	if err != nil {
		return nil, 0, 0, fmt.Errorf("list messages: %w", err)
	}

	profile, err := s.GmailClient.Users.GetProfile(s.mailbox()).Context(ctx).Do()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("get profile: %w", err)
	}

	full, unfetched := s.expandMessages(ctx, resp.Messages)
	return full, unfetched, profile.HistoryId, nil
}

// performIncrementalSync asks Gmail only for mails added since startID.
func (s *EmailService) performIncrementalSync(ctx context.Context, startID uint64) ([]*gmail.Message, int, uint64, error) {
	var (
		headers   []*gmail.Message
		historyID uint64
	)
	err := s.retry(ctx, 3, func() error {
		headers, historyID = nil, 0
		call := s.GmailClient.Users.History.List(s.mailbox()).StartHistoryId(startID).HistoryTypes("messageAdded")
		return call.Pages(ctx, func(page *gmail.ListHistoryResponse) error {
			for _, h := range page.History {
				for _, added := range h.MessagesAdded {
					if added.Message != nil {
						headers = append(headers, added.Message)
					}
				}
			}
			if page.HistoryId > historyID {
				historyID = page.HistoryId
			}
			return nil
		})
	})
	if err != nil {
		return nil, 0, 0, err
	}
	full, unfetched := s.expandMessages(ctx, headers)
	return full, unfetched, historyID, nil
}

// expandMessages fetches the full payload of each listed message and
// returns how many could not be fetched. A message Gmail answers 404 for was
// deleted after it was listed and is skipped without counting as a failure.
func (s *EmailService) expandMessages(ctx context.Context, headers []*gmail.Message) ([]*gmail.Message, int) {
	full := make([]*gmail.Message, 0, len(headers))
	failed := 0
	for _, h := range headers {
		err := s.retry(ctx, 2, func() error {
			msg, err := s.GmailClient.Users.Messages.Get(s.mailbox(), h.Id).Format("full").Context(ctx).Do()
			if err == nil {
				full = append(full, msg)
			}
			return err
		})
		switch {
		case err == nil:
		case isNotFoundError(err):
			logger.Warn("message deleted before fetch, skipping", "message_id", h.Id)
		default:
			logger.Error("fetch message failed, will retry", "message_id", h.Id, "error", err)
			failed++
		}
	}
	return full, failed
}

// processSingleEmail labels one mail. It returns a nil record for mails that
// are not lead notifications.
func (s *EmailService) processSingleEmail(ctx context.Context, msg *gmail.Message) (*models.Record, error) {
	headers := parseHeaders(msg)
	subject, sender := headers["Subject"], headers["From"]

	if !s.Matcher.Matches(subject, sender) {
		logger.Debug("email is not a lead notification", "message_id", msg.Id, "from", sender)
		return nil, nil
	}

	body := getEmailBody(msg)
	if strings.TrimSpace(body) == "" {
		logger.Warn("lead email has no body", "message_id", msg.Id)
		return nil, nil
	}

	record, err := s.Leads.LabelFeed(ctx, body, s.ModelName)
	if err != nil {
		return nil, err
	}
	logger.Info("lead email labeled", "message_id", msg.Id, "subject", subject, "label", record.Label)
	return record, nil
}

func (s *EmailService) mailbox() string {
	if s.Mailbox == "" {
		return defaultMailbox
	}
	return s.Mailbox
}

// retry runs f up to attempts times with exponential backoff. A 404 is
// returned immediately since retrying cannot change it.
func (s *EmailService) retry(ctx context.Context, attempts int, f func() error) error {
	sleep := s.RetryDelay
	var err error
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}
		if isNotFoundError(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		logger.Warn("Gmail API error, retrying", "error", err, "in", sleep)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
		sleep *= 2
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}

// isPermanentLeadError reports errors that retrying the same mail cannot fix.
func isPermanentLeadError(err error) bool {
	return errors.Is(err, predict.ErrUnknownCategory) ||
		errors.Is(err, predict.ErrUnknownCountry) ||
		errors.Is(err, ErrModelNotFound)
}

// isHistoryExpiredError reports that Gmail no longer knows a history id.
func isHistoryExpiredError(err error) bool {
	return isNotFoundError(err)
}

func isNotFoundError(err error) bool {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code == http.StatusNotFound
	}
	return false
}

func parseHeaders(msg *gmail.Message) map[string]string {
	res := make(map[string]string)
	if msg.Payload == nil {
		return res
	}
	for _, h := range msg.Payload.Headers {
		res[h.Name] = h.Value
	}
	return res
}

// getEmailBody returns the HTML body of msg, falling back to plain text.
// Lead notifications carry their metadata in <b> tags, so HTML wins.
func getEmailBody(msg *gmail.Message) string {
	if msg.Payload == nil {
		return ""
	}
	if body := findPart(msg.Payload, "text/html"); body != "" {
		return body
	}
	if body := findPart(msg.Payload, "text/plain"); body != "" {
		return body
	}
	if len(msg.Payload.Parts) == 0 && msg.Payload.Body != nil {
		return decodeBody(msg.Payload.Body.Data)
	}
	return ""
}

func findPart(part *gmail.MessagePart, mimeType string) string {
	if part.MimeType == mimeType && part.Body != nil && part.Body.Data != "" {
		return decodeBody(part.Body.Data)
	}
	for _, p := range part.Parts {
		if body := findPart(p, mimeType); body != "" {
			return body
		}
	}
	return ""
}

// Gmail uses URL-safe base64, with or without padding.
func decodeBody(data string) string {
	d, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		d, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
		if err != nil {
			return ""
		}
	}
	return string(d)
}
