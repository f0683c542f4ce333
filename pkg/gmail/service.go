package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
	"time"

	authdomain "cleanagent-backend/internal/auth/domain"
	authrepository "cleanagent-backend/internal/auth/repository"
	"cleanagent-backend/internal/classify"
	cleandomain "cleanagent-backend/internal/clean/domain"
	"cleanagent-backend/internal/label"
	"cleanagent-backend/pkg/crypto"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// primaryInboxQuery restricts fetching to the Primary tab. Gmail does
// not accept CATEGORY_PRIMARY in labelIds, only in the query string.
const primaryInboxQuery = "in:inbox category:primary"

// fetchConcurrency caps parallel Messages.Get calls per fetch
const fetchConcurrency = 10

// Service talks to the Gmail API on behalf of a user, refreshing and
// persisting OAuth tokens as needed
type Service struct {
	clientID     string
	clientSecret string
	vault        *crypto.Vault
	userRepo     authrepository.UserRepository
}

func NewService(clientID, clientSecret string, vault *crypto.Vault, userRepo authrepository.UserRepository) *Service {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
		vault:        vault,
		userRepo:     userRepo,
	}
}

type notifyTokenSource struct {
	src      oauth2.TokenSource
	current  *oauth2.Token
	callback func(*oauth2.Token) error
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.callback(t); err != nil {
			log.Printf("[Gmail] Failed to persist refreshed token: %v", err)
		}
	}
	return t, nil
}

// gmailService builds an authenticated Gmail client for the user.
// Refreshed access tokens are written back to the user record so the
// next request starts from a valid token.
func (s *Service) gmailService(ctx context.Context, user *authdomain.User) (*gmail.Service, error) {
	refreshToken, err := s.vault.Decrypt(user.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("unable to decrypt refresh token: %w", err)
	}

	token := &oauth2.Token{
		AccessToken:  user.AccessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}
	if user.TokenExpiresAt != nil {
		token.Expiry = *user.TokenExpiresAt
	} else if refreshToken != "" {
		// Unknown expiry: force a refresh on first use
		token.Expiry = time.Now()
	}

	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
	}

	wrappedSource := &notifyTokenSource{
		src:      config.TokenSource(ctx, token),
		current:  token,
		callback: func(t *oauth2.Token) error { return s.persistToken(user, t) },
	}

	client := oauth2.NewClient(ctx, wrappedSource)
	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}
	return srv, nil
}

func (s *Service) persistToken(user *authdomain.User, t *oauth2.Token) error {
	user.AccessToken = t.AccessToken
	if !t.Expiry.IsZero() {
		expiry := t.Expiry
		user.TokenExpiresAt = &expiry
	}
	if t.RefreshToken != "" {
		encrypted, err := s.vault.Encrypt(t.RefreshToken)
		if err != nil {
			return err
		}
		user.RefreshToken = encrypted
	}
	return s.userRepo.Update(user)
}

// FetchEmails pulls the newest messages from the user's Primary inbox
// tab, newest first. Messages whose detail fetch fails are skipped.
func (s *Service) FetchEmails(ctx context.Context, user *authdomain.User, count int) ([]cleandomain.RawMessage, error) {
	srv, err := s.gmailService(ctx, user)
	if err != nil {
		return nil, err
	}

	listResp, err := srv.Users.Messages.List("me").
		LabelIds("INBOX").
		Q(primaryInboxQuery).
		MaxResults(int64(count)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve messages: %v", err)
	}

	if len(listResp.Messages) == 0 {
		return []cleandomain.RawMessage{}, nil
	}

	type fetchResult struct {
		email *cleandomain.RawMessage
		err   error
	}
	resultChan := make(chan fetchResult, len(listResp.Messages))
	semaphore := make(chan struct{}, fetchConcurrency)

	for _, msg := range listResp.Messages {
		go func(msgID string) {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			fullMsg, err := srv.Users.Messages.Get("me", msgID).Format("full").Context(ctx).Do()
			if err != nil {
				resultChan <- fetchResult{nil, err}
				return
			}
			email := convertMessage(fullMsg)
			resultChan <- fetchResult{&email, nil}
		}(msg.Id)
	}

	emails := make([]cleandomain.RawMessage, 0, len(listResp.Messages))
	for range listResp.Messages {
		result := <-resultChan
		if result.err != nil {
			log.Printf("[Gmail] Skipping message, fetch failed: %v", result.err)
			continue
		}
		emails = append(emails, *result.email)
	}

	// Parallel fetching returns messages in arbitrary order
	sort.Slice(emails, func(i, j int) bool {
		return emails[i].Date.After(emails[j].Date)
	})

	log.Printf("[Gmail] Fetched %d/%d emails for %s", len(emails), len(listResp.Messages), user.Email)
	return emails, nil
}

// LabelSession opens an authenticated labeling session for the user
func (s *Service) LabelSession(ctx context.Context, user *authdomain.User) (label.Session, error) {
	srv, err := s.gmailService(ctx, user)
	if err != nil {
		return nil, err
	}
	return &labelSession{srv: srv}, nil
}

type labelSession struct {
	srv *gmail.Service
	// labelIDs caches name -> ID lookups within one session
	labelIDs map[string]string
}

// EnsureLabel finds or creates the Gmail label for a category. Existing
// labels get their color reconciled best-effort; creation retries
// without color when Gmail rejects the palette entry.
func (ls *labelSession) EnsureLabel(ctx context.Context, category classify.Category) (string, error) {
	name := label.NameFor(category)
	if id, ok := ls.labelIDs[name]; ok {
		return id, nil
	}

	listResp, err := ls.srv.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to retrieve labels: %v", err)
	}

	color := label.ColorFor(category)
	for _, existing := range listResp.Labels {
		if existing.Name != name {
			continue
		}
		if existing.Color == nil ||
			existing.Color.BackgroundColor != color.Background ||
			existing.Color.TextColor != color.Text {
			_, patchErr := ls.srv.Users.Labels.Patch("me", existing.Id, &gmail.Label{
				Color: &gmail.LabelColor{
					TextColor:       color.Text,
					BackgroundColor: color.Background,
				},
			}).Context(ctx).Do()
			if patchErr != nil {
				log.Printf("[Gmail] Could not update label color for '%s': %v", name, patchErr)
			}
		}
		ls.cache(name, existing.Id)
		return existing.Id, nil
	}

	newLabel := &gmail.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
		Color: &gmail.LabelColor{
			TextColor:       color.Text,
			BackgroundColor: color.Background,
		},
	}
	created, err := ls.srv.Users.Labels.Create("me", newLabel).Context(ctx).Do()
	if err != nil {
		if !strings.Contains(strings.ToLower(err.Error()), "color") {
			return "", fmt.Errorf("unable to create label '%s': %v", name, err)
		}
		log.Printf("[Gmail] Color not accepted for '%s', creating label without color: %v", name, err)
		newLabel.Color = nil
		created, err = ls.srv.Users.Labels.Create("me", newLabel).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("unable to create label '%s': %v", name, err)
		}
	}
	ls.cache(name, created.Id)
	return created.Id, nil
}

func (ls *labelSession) cache(name, id string) {
	if ls.labelIDs == nil {
		ls.labelIDs = make(map[string]string)
	}
	ls.labelIDs[name] = id
}

// BatchApplyLabel adds the label to all listed messages in one call
func (ls *labelSession) BatchApplyLabel(ctx context.Context, labelID string, messageIDs []string) error {
	err := ls.srv.Users.Messages.BatchModify("me", &gmail.BatchModifyMessagesRequest{
		Ids:         messageIDs,
		AddLabelIds: []string{labelID},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to apply label: %v", err)
	}
	return nil
}

// Message conversion helpers

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

func convertMessage(msg *gmail.Message) cleandomain.RawMessage {
	from := getHeader(msg.Payload.Headers, "From")
	fromName := from
	fromEmail := from
	if idx := strings.Index(from, "<"); idx > 0 {
		fromName = strings.TrimSpace(from[:idx])
		fromEmail = strings.Trim(strings.TrimSpace(from[idx:]), "<>")
	}

	body, isHTML := getMessageBody(msg.Payload)
	if isHTML {
		body = htmlTagPattern.ReplaceAllString(body, " ")
		body = strings.ReplaceAll(body, "&nbsp;", " ")
		body = strings.ReplaceAll(body, "&lt;", "<")
		body = strings.ReplaceAll(body, "&gt;", ">")
		body = strings.ReplaceAll(body, "&amp;", "&")
		body = strings.ReplaceAll(body, "&quot;", "\"")
		body = strings.Join(strings.Fields(body), " ")
	}

	return cleandomain.RawMessage{
		ID:       msg.Id,
		Subject:  getHeader(msg.Payload.Headers, "Subject"),
		From:     fromEmail,
		FromName: fromName,
		Body:     body,
		Snippet:  msg.Snippet,
		Date:     time.Unix(msg.InternalDate/1000, 0),
		Labels:   msg.LabelIds,
		ThreadID: msg.ThreadId,
	}
}

func getHeader(headers []*gmail.MessagePartHeader, name string) string {
	for _, header := range headers {
		if header.Name == name {
			return header.Value
		}
	}
	return ""
}

func getMessageBody(payload *gmail.MessagePart) (string, bool) {
	if payload.Body != nil && payload.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(payload.Body.Data)
		if err == nil {
			return string(data), payload.MimeType == "text/html"
		}
	}

	var htmlBody string
	var plainBody string

	var findBody func(parts []*gmail.MessagePart)
	findBody = func(parts []*gmail.MessagePart) {
		for _, part := range parts {
			if part.Body != nil && part.Body.Data != "" {
				data, err := base64.URLEncoding.DecodeString(part.Body.Data)
				if err == nil {
					switch part.MimeType {
					case "text/html":
						htmlBody = string(data)
					case "text/plain":
						plainBody = string(data)
					}
				}
			}
			if len(part.Parts) > 0 {
				findBody(part.Parts)
			}
		}
	}
	findBody(payload.Parts)

	if plainBody != "" {
		return plainBody, false
	}
	return htmlBody, true
}
