// internal/app/system/notify/notifier.go

// Package notify is the fire-and-forget notification side-channel for
// workflow transitions. It writes in-app notification documents and sends
// optional email, and it never blocks or fails the transition that
// triggered it: every error here is logged and dropped.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	notifstore "github.com/anisham/contribhub/internal/app/store/notifications"
	"github.com/anisham/contribhub/internal/app/system/mailer"
	"github.com/anisham/contribhub/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// deliveryTimeout bounds one best-effort delivery (store write + email).
const deliveryTimeout = 15 * time.Second

// Event is one workflow transition to announce.
type Event struct {
	Type     string // models.NotifyPaymentApproved etc.
	UserID   string // recipient: member ObjectID hex or models.AdminUserID
	Username string // recipient's username
	Title    string
	Message  string
	Email    *mailer.Email // optional; nil when the recipient has no email
	Data     *models.NotificationData
}

// Notifier delivers events asynchronously. Construct one at startup and
// inject it; it holds no global state.
type Notifier struct {
	store *notifstore.Store
	mail  *mailer.Mailer
	site  string
	log   *zap.Logger
	wg    sync.WaitGroup
}

// New builds a Notifier. mail may be nil (no email configured).
func New(store *notifstore.Store, mail *mailer.Mailer, siteName string, logger *zap.Logger) *Notifier {
	return &Notifier{store: store, mail: mail, site: siteName, log: logger}
}

// Notify dispatches the event in the background and returns immediately.
// The caller's context is deliberately not used for delivery: the workflow
// transition has already committed by the time this runs, and an HTTP
// request ending must not cancel the side-channel.
func (n *Notifier) Notify(_ context.Context, ev Event) {
	if n == nil {
		return
	}
	id := uuid.NewString()
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()
		n.deliver(ctx, id, ev)
	}()
}

// Flush waits for all in-flight deliveries. Used by tests and shutdown.
func (n *Notifier) Flush() {
	if n != nil {
		n.wg.Wait()
	}
}

func (n *Notifier) deliver(ctx context.Context, id string, ev Event) {
	if _, err := n.store.Create(ctx, models.Notification{
		UserID:   ev.UserID,
		Username: ev.Username,
		Type:     ev.Type,
		Title:    ev.Title,
		Message:  ev.Message,
		Data:     ev.Data,
	}); err != nil {
		n.log.Error("notification store write failed",
			zap.String("delivery_id", id),
			zap.String("type", ev.Type),
			zap.String("user_id", ev.UserID),
			zap.Error(err))
	}

	if ev.Email != nil && n.mail != nil {
		if err := n.mail.Send(ctx, *ev.Email); err != nil {
			n.log.Error("notification email failed",
				zap.String("delivery_id", id),
				zap.String("type", ev.Type),
				zap.Error(err))
		}
	}
}

// PaymentSubmitted announces a new payment request to the admin.
func (n *Notifier) PaymentSubmitted(ctx context.Context, req models.PaymentRequest) {
	n.Notify(ctx, Event{
		Type:     models.NotifyPaymentSubmitted,
		UserID:   models.AdminUserID,
		Username: models.AdminUserID,
		Title:    "New payment request",
		Message:  fmt.Sprintf("%s has submitted a payment of ₹%d for %s.", req.Username, req.Amount, req.Month),
		Data: &models.NotificationData{
			PaymentID:     req.PaymentID,
			Month:         req.Month,
			Amount:        req.Amount,
			AdminUsername: req.Username,
		},
	})
}

// PaymentApproved announces an accepted request to the member.
func (n *Notifier) PaymentApproved(ctx context.Context, req models.PaymentRequest, member models.Member, adminUsername string) {
	ev := Event{
		Type:     models.NotifyPaymentApproved,
		UserID:   member.ID.Hex(),
		Username: member.Username,
		Title:    "Payment approved",
		Message:  fmt.Sprintf("Your payment of ₹%d for %s has been approved by %s.", req.Amount, req.Month, adminUsername),
		Data: &models.NotificationData{
			PaymentID:     req.PaymentID,
			Month:         req.Month,
			Amount:        req.Amount,
			AdminUsername: adminUsername,
		},
	}
	if member.Email != "" {
		email := mailer.BuildPaymentApprovedEmail(mailer.PaymentEmailData{
			SiteName:      n.site,
			Username:      member.Username,
			Month:         req.Month,
			Amount:        req.Amount,
			PaymentID:     req.PaymentID,
			AdminUsername: adminUsername,
		})
		email.To = member.Email
		ev.Email = &email
	}
	n.Notify(ctx, ev)
}

// PaymentRejected announces a rejected request to the member.
func (n *Notifier) PaymentRejected(ctx context.Context, req models.PaymentRequest, member models.Member, adminUsername, reason string) {
	msg := fmt.Sprintf("Your payment of ₹%d for %s was rejected by %s.", req.Amount, req.Month, adminUsername)
	if reason != "" {
		msg += " Reason: " + reason
	}
	ev := Event{
		Type:     models.NotifyPaymentRejected,
		UserID:   member.ID.Hex(),
		Username: member.Username,
		Title:    "Payment rejected",
		Message:  msg,
		Data: &models.NotificationData{
			PaymentID:     req.PaymentID,
			Month:         req.Month,
			Amount:        req.Amount,
			AdminUsername: adminUsername,
		},
	}
	if member.Email != "" {
		email := mailer.BuildPaymentRejectedEmail(mailer.PaymentEmailData{
			SiteName:      n.site,
			Username:      member.Username,
			Month:         req.Month,
			Amount:        req.Amount,
			PaymentID:     req.PaymentID,
			AdminUsername: adminUsername,
			Reason:        reason,
		})
		email.To = member.Email
		ev.Email = &email
	}
	n.Notify(ctx, ev)
}
