package sync

import (
	"context"
	"errors"
	"fmt"

	"whatsapp-admin/internal/meta"
	"whatsapp-admin/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Result is what every sync entry point returns. Errors never cross the
// service boundary as panics or raw errors; they are logged and folded into
// the message.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func failure(format string, args ...interface{}) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

func success(format string, args ...interface{}) Result {
	return Result{Success: true, Message: fmt.Sprintf(format, args...)}
}

// Service sequences credential resolution, remote fetches and
// reconciliation. One instance serves all tenants; each invocation is a
// single logical thread of control, the only fan-out is the pair of
// owned/client account collection fetches.
type Service struct {
	db       *gorm.DB
	client   *meta.Client
	resolver *CredentialResolver
	rc       *Reconciler
}

func NewService(db *gorm.DB, client *meta.Client) *Service {
	return &Service{
		db:       db,
		client:   client,
		resolver: NewCredentialResolver(db),
		rc:       NewReconciler(db),
	}
}

// SyncAll sweeps every provisioned app. A failing app or account is logged
// and skipped; the sweep continues and the result reports the failure
// count.
func (s *Service) SyncAll(ctx context.Context) Result {
	var apps []models.App
	if err := s.db.Find(&apps).Error; err != nil {
		zap.S().Errorf("sync all: loading apps: %v", err)
		return failure("loading apps: %v", err)
	}
	if len(apps) == 0 {
		return success("no apps provisioned, nothing to sync")
	}

	var synced, failed int
	for i := range apps {
		app := &apps[i]
		n, err := s.syncApp(ctx, app)
		synced += n
		if err != nil {
			failed++
			zap.S().Warnf("sync all: app %s: %v", app.AppID, err)
		}
	}

	if failed > 0 {
		return failure("synced %d accounts, %d of %d apps had errors", synced, failed, len(apps))
	}
	return success("synced %d accounts across %d apps", synced, len(apps))
}

// SyncAccount refreshes one messaging account and its children.
func (s *Service) SyncAccount(ctx context.Context, localID uint) Result {
	var account models.WabaAccount
	if err := s.db.First(&account, localID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return failure("account %d not found", localID)
		}
		return failure("loading account %d: %v", localID, err)
	}

	app, err := s.resolver.ForAccount(localID)
	if err != nil {
		zap.S().Warnf("sync account %d: %v", localID, err)
		return failure("%v", err)
	}

	businessID := s.syncBusiness(ctx, app)
	if err := s.syncAccountByRemoteID(ctx, account.RemoteID, app.AccessToken, businessID, app.ID); err != nil {
		zap.S().Warnf("sync account %d: %v", localID, err)
		return failure("syncing account %s: %v", account.RemoteID, err)
	}
	return success("account %s synced", account.RemoteID)
}

// SyncPhoneNumber refreshes one phone number. The existing account link is
// kept as is; only the number's own attributes are updated.
func (s *Service) SyncPhoneNumber(ctx context.Context, localID uint) Result {
	var phone models.PhoneNumber
	if err := s.db.First(&phone, localID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return failure("phone number %d not found", localID)
		}
		return failure("loading phone number %d: %v", localID, err)
	}

	app, err := s.resolver.ForPhoneNumber(localID)
	if err != nil {
		zap.S().Warnf("sync phone number %d: %v", localID, err)
		return failure("%v", err)
	}

	detail, err := s.client.GetPhoneNumber(ctx, phone.RemoteID, app.AccessToken)
	if err != nil {
		zap.S().Warnf("sync phone number %d: %v", localID, err)
		return failure("fetching phone number %s: %v", phone.RemoteID, err)
	}
	if _, err := s.rc.UpsertPhoneNumber(detail, nil); err != nil {
		return failure("saving phone number %s: %v", phone.RemoteID, err)
	}
	return success("phone number %s synced", phone.DisplayNumber)
}

// syncApp runs the per-app slice of a full sweep and returns how many
// accounts were synced.
func (s *Service) syncApp(ctx context.Context, app *models.App) (int, error) {
	if app.AccessToken == "" {
		return 0, fmt.Errorf("app %s: %w", app.AppID, ErrNoCredential)
	}
	if app.BusinessRemoteID == "" {
		return 0, fmt.Errorf("app %s has no business id", app.AppID)
	}

	// owned and client account collections are independent, fetch both at
	// once and join before reconciling
	var owned, shared []meta.WabaAccount
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		owned, err = s.client.ListOwnedAccounts(gctx, app.BusinessRemoteID, app.AccessToken)
		return err
	})
	g.Go(func() (err error) {
		shared, err = s.client.ListClientAccounts(gctx, app.BusinessRemoteID, app.AccessToken)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("listing accounts of business %s: %w", app.BusinessRemoteID, err)
	}

	stubs := mergeAccounts(owned, shared)
	businessID := s.syncBusiness(ctx, app)

	var synced int
	var errs []error
	for _, stub := range stubs {
		if err := s.syncAccountByRemoteID(ctx, stub.ID, app.AccessToken, businessID, app.ID); err != nil {
			zap.S().Warnf("sweep: account %s: %v", stub.ID, err)
			errs = append(errs, fmt.Errorf("account %s: %w", stub.ID, err))
			continue
		}
		synced++
	}
	return synced, errors.Join(errs...)
}

// syncBusiness reconciles the app's owning business and returns its local
// id, or nil when the app has none or the fetch failed. The business row is
// written before any account can reference it.
func (s *Service) syncBusiness(ctx context.Context, app *models.App) *uint {
	if app.BusinessRemoteID == "" {
		return nil
	}
	rec, err := s.client.GetBusiness(ctx, app.BusinessRemoteID, app.AccessToken)
	if err != nil {
		zap.S().Warnf("fetching business %s: %v", app.BusinessRemoteID, err)
		return nil
	}
	id, err := s.rc.UpsertBusiness(rec)
	if err != nil {
		zap.S().Warnf("saving business %s: %v", app.BusinessRemoteID, err)
		return nil
	}
	return &id
}

// syncAccountByRemoteID is the targeted per-account sequence: account,
// then phone numbers, then the template collection with stale deletion.
// A failing phone-number detail fetch keeps the minimal data already in
// hand instead of aborting the rest of the account.
func (s *Service) syncAccountByRemoteID(ctx context.Context, remoteID, token string, businessID *uint, appID uint) error {
	rec, err := s.client.GetWabaAccount(ctx, remoteID, token)
	if err != nil {
		return fmt.Errorf("fetching account: %w", err)
	}
	accountID, err := s.rc.UpsertAccount(rec, businessID, appID)
	if err != nil {
		return fmt.Errorf("saving account: %w", err)
	}

	var errs []error

	numbers, err := s.client.ListPhoneNumbers(ctx, remoteID, token)
	if err != nil {
		errs = append(errs, fmt.Errorf("listing phone numbers: %w", err))
	}
	for i := range numbers {
		stub := &numbers[i]
		detail, err := s.client.GetPhoneNumber(ctx, stub.ID, token)
		if err != nil {
			zap.S().Warnf("phone number %s detail fetch failed, keeping minimal data: %v", stub.ID, err)
			detail = stub
		}
		if _, err := s.rc.UpsertPhoneNumber(detail, &accountID); err != nil {
			errs = append(errs, fmt.Errorf("saving phone number %s: %w", stub.ID, err))
		}
	}

	templates, err := s.client.ListTemplates(ctx, remoteID, token)
	if err != nil {
		// no full-replace on a failed fetch, the local set stays untouched
		errs = append(errs, fmt.Errorf("listing templates: %w", err))
	} else {
		kept, dropped, err := s.rc.ReconcileTemplates(accountID, templates)
		if err != nil {
			errs = append(errs, fmt.Errorf("reconciling templates: %w", err))
		} else if dropped > 0 {
			zap.S().Infof("account %s: %d templates kept, %d stale deleted", remoteID, kept, dropped)
		}
	}

	return errors.Join(errs...)
}

// mergeAccounts joins the owned and client collections, deduplicating by
// remote id. An account shared back to its own business would otherwise
// be processed twice.
func mergeAccounts(owned, shared []meta.WabaAccount) []meta.WabaAccount {
	seen := make(map[string]bool, len(owned)+len(shared))
	merged := make([]meta.WabaAccount, 0, len(owned)+len(shared))
	for _, acc := range append(owned, shared...) {
		if acc.ID == "" || seen[acc.ID] {
			continue
		}
		seen[acc.ID] = true
		merged = append(merged, acc)
	}
	return merged
}
