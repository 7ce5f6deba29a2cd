package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/neuradash/account-system/internal/api/metrics"
	"github.com/neuradash/account-system/internal/core/avatar"
	"github.com/neuradash/account-system/internal/core/bus"
	"github.com/neuradash/account-system/internal/core/domain"
	"github.com/neuradash/account-system/internal/core/ports"
)

const (
	activityLogCap   = 50
	maxQueuedWrites  = 100
	storeCallTimeout = 5 * time.Second
)

// AccountManager implements ports.AccountService. It is the only component
// that touches the store: every UI-facing module reads and writes the user
// record through it, which is the system's single point of serialization.
// Writes remain last-write-wins at patch level — two overlapping patches
// racing each other silently drop fields from the loser.
type AccountManager struct {
	store    ports.Store
	bus      *bus.Bus
	sync     ports.SyncBroadcaster
	archiver ports.ActivityArchiver
	log      zerolog.Logger

	instance     string
	syncInterval time.Duration
	now          func() time.Time

	mu         sync.Mutex
	cache      *domain.EnrichedRecord
	writeQueue []queuedWrite
	syncStop   chan struct{}
}

type queuedWrite struct {
	key   string
	value any
}

func NewAccountManager(
	store ports.Store,
	eventBus *bus.Bus,
	syncBroadcaster ports.SyncBroadcaster,
	archiver ports.ActivityArchiver,
	syncInterval time.Duration,
	log zerolog.Logger,
) *AccountManager {
	return &AccountManager{
		store:        store,
		bus:          eventBus,
		sync:         syncBroadcaster,
		archiver:     archiver,
		log:          log,
		instance:     uuid.NewString(),
		syncInterval: syncInterval,
		now:          time.Now,
	}
}

// InstanceID identifies this manager in cross-instance change notices.
func (m *AccountManager) InstanceID() string {
	return m.instance
}

// Start subscribes to cross-instance change notices and announces
// readiness on the local bus. The subscription stops with ctx.
func (m *AccountManager) Start(ctx context.Context) {
	m.sync.Subscribe(ctx, m.onNotice)
	m.bus.Emit(domain.EventInitialized, nil)
}

// onNotice handles a change made by another instance: drop the local cache,
// re-read, and re-emit locally so this instance's consumers refresh without
// an explicit reload.
func (m *AccountManager) onNotice(notice domain.ChangeNotice) {
	if notice.Instance == m.instance {
		return
	}
	metrics.SyncNoticesTotal.WithLabelValues("received").Inc()
	m.log.Debug().
		Str("from_instance", notice.Instance).
		Str("event", notice.Event).
		Msg("change notice received")

	m.mu.Lock()
	m.cache = nil
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), storeCallTimeout)
	defer cancel()

	if notice.Event == domain.EventLoggedOut {
		m.stopSyncLoop()
		m.bus.Emit(domain.EventLoggedOut, nil)
		return
	}
	if rec := m.GetUserData(ctx, true); rec != nil {
		m.bus.Emit(domain.EventUserUpdated, rec)
	}
}

// GetUserData returns the enriched record, serving the in-memory cache
// unless forceRefresh is set. An expired session is treated as absent: the
// stale record is cleared and nil returned.
func (m *AccountManager) GetUserData(ctx context.Context, forceRefresh bool) *domain.EnrichedRecord {
	m.mu.Lock()
	if m.cache != nil && !forceRefresh {
		cached := m.cache
		m.mu.Unlock()
		metrics.RecordReadsTotal.WithLabelValues("cache").Inc()
		return cached
	}
	m.mu.Unlock()

	raw, ok := m.store.Get(ctx, domain.KeyUserData)
	if !ok {
		metrics.RecordReadsTotal.WithLabelValues("none").Inc()
		return nil
	}

	var rec domain.UserRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		m.log.Warn().Err(err).Msg("stored user record is malformed, treating as absent")
		metrics.RecordReadsTotal.WithLabelValues("none").Inc()
		return nil
	}

	if rec.SessionExpired(m.now()) {
		m.log.Info().Str("user_id", rec.ID).Msg("session expired, clearing stale record")
		m.clearStored(ctx, false)
		m.mu.Lock()
		m.cache = nil
		m.mu.Unlock()
		m.stopSyncLoop()
		metrics.RecordReadsTotal.WithLabelValues("expired").Inc()
		m.bus.Emit(domain.EventLoggedOut, nil)
		return nil
	}

	enriched := m.enrich(ctx, rec)
	m.mu.Lock()
	m.cache = enriched
	m.mu.Unlock()
	m.ensureSyncLoop()

	metrics.RecordReadsTotal.WithLabelValues("store").Inc()
	m.bus.Emit(domain.EventUserLoaded, enriched)
	return enriched
}

// enrich builds the read model: plan resolution, synthetic usage,
// plan-gated permissions, subscription derivation, and avatar regeneration,
// in that order. Enrichment is deterministic for a given stored state.
func (m *AccountManager) enrich(ctx context.Context, rec domain.UserRecord) *domain.EnrichedRecord {
	rec = rec.Defaulted()

	plan, ok := domain.LookupPlan(rec.PlanID)
	if !ok {
		m.log.Warn().Str("plan_id", rec.PlanID).Msg("unknown plan on stored record, downgrading to free")
		plan, _ = domain.LookupPlan(domain.PlanFree)
		rec.PlanID = domain.PlanFree
	}
	if rec.Plan == "" {
		rec.Plan = plan.Name
	}

	var sub *domain.EnrichedSubscription
	if raw, found := m.store.Get(ctx, domain.KeySubscription); found {
		var stored domain.Subscription
		if err := json.Unmarshal(raw, &stored); err == nil && stored.PlanID != "" {
			enriched := stored.Enrich(m.now())
			sub = &enriched
		}
	}

	if avatar.IsPlaceholder(rec.ProfileImage) {
		rec.ProfileImage = avatar.Generate(rec.Name, rec.Email)
	}

	return &domain.EnrichedRecord{
		UserRecord:   rec,
		PlanInfo:     plan,
		Usage:        MockUsage(rec.Email, plan),
		Permissions:  domain.PermissionsForPlan(plan.ID),
		Subscription: sub,
	}
}

// SaveUserData validates patch, shallow-merges it over the stored record,
// splits subscription/settings into their own keys, persists, refreshes the
// cache, and fans the update out. Validation failure persists nothing.
func (m *AccountManager) SaveUserData(ctx context.Context, patch map[string]any) bool {
	if patch == nil {
		m.log.Warn().Msg("save rejected: nil patch")
		metrics.RecordWritesTotal.WithLabelValues("validation_error").Inc()
		return false
	}
	if v, present := patch["email"]; present {
		email, isString := v.(string)
		if !isString || !domain.ValidEmail(email) {
			m.log.Warn().Interface("email", v).Msg("save rejected: invalid email")
			metrics.RecordWritesTotal.WithLabelValues("validation_error").Inc()
			return false
		}
	}
	if v, present := patch["planId"]; present {
		planID, isString := v.(string)
		if !isString {
			metrics.RecordWritesTotal.WithLabelValues("validation_error").Inc()
			return false
		}
		if _, known := domain.LookupPlan(planID); !known {
			m.log.Warn().Str("plan_id", planID).Msg("save rejected: unknown plan")
			metrics.RecordWritesTotal.WithLabelValues("validation_error").Inc()
			return false
		}
	}

	var rec domain.UserRecord
	if raw, found := m.store.Get(ctx, domain.KeyUserData); found {
		// Malformed stored JSON starts the record over rather than failing
		// the write.
		_ = json.Unmarshal(raw, &rec)
	}

	remainder := make(map[string]any, len(patch))
	for k, v := range patch {
		remainder[k] = v
	}

	if v, present := remainder["subscription"]; present {
		delete(remainder, "subscription")
		if sub, ok := toSubscription(v); ok {
			if !m.store.Set(ctx, domain.KeySubscription, sub) {
				m.enqueueWrite(domain.KeySubscription, sub)
			}
		}
	}
	if v, present := remainder["settings"]; present {
		delete(remainder, "settings")
		if bag, ok := v.(map[string]any); ok {
			m.mergeSettings(ctx, bag)
		}
	}

	rec.ApplyPatch(remainder)
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.LastModified = m.now().UTC()

	if !m.store.Set(ctx, domain.KeyUserData, rec) {
		m.log.Warn().Msg("record write failed, queueing for replay")
		m.enqueueWrite(domain.KeyUserData, rec)
		metrics.RecordWritesTotal.WithLabelValues("store_error").Inc()
		return false
	}

	enriched := m.enrich(ctx, rec)
	m.mu.Lock()
	m.cache = enriched
	m.mu.Unlock()
	m.ensureSyncLoop()

	metrics.RecordWritesTotal.WithLabelValues("ok").Inc()
	m.bus.Emit(domain.EventUserUpdated, enriched)
	m.publish(ctx, domain.EventUserUpdated, domain.KeyUserData)
	return true
}

// UpdateUserPlan switches the user to planID with a fresh active
// subscription. Fails without side effects when the plan is unknown or no
// user is loaded.
func (m *AccountManager) UpdateUserPlan(ctx context.Context, planID string, details *domain.Subscription) bool {
	plan, known := domain.LookupPlan(planID)
	if !known {
		m.log.Warn().Str("plan_id", planID).Msg("plan update rejected: unknown plan")
		return false
	}
	current := m.GetUserData(ctx, false)
	if current == nil {
		m.log.Warn().Str("plan_id", planID).Msg("plan update rejected: no user loaded")
		return false
	}
	oldPlanID := current.PlanID

	sub := domain.DefaultSubscription(plan, m.now())
	if details != nil {
		if details.PaymentMethod != "" {
			sub.PaymentMethod = details.PaymentMethod
		}
		if details.Currency != "" {
			sub.Currency = details.Currency
		}
		if details.Amount > 0 {
			sub.Amount = details.Amount
		}
		if !details.StartDate.IsZero() {
			sub.StartDate = details.StartDate
		}
		if !details.EndDate.IsZero() {
			sub.EndDate = details.EndDate
		}
		sub.AutoRenew = details.AutoRenew
	}

	if !m.store.Set(ctx, domain.KeySubscription, sub) {
		m.log.Warn().Str("plan_id", planID).Msg("subscription write failed")
		m.enqueueWrite(domain.KeySubscription, sub)
		return false
	}
	if !m.SaveUserData(ctx, map[string]any{"planId": planID, "plan": plan.Name}) {
		return false
	}

	metrics.PlanChangesTotal.WithLabelValues(oldPlanID, planID).Inc()
	m.bus.Emit(domain.EventPlanChanged, domain.PlanChange{OldPlanID: oldPlanID, NewPlanID: planID})
	m.bus.Emit(domain.EventNotification, "Plan changed to "+plan.Name)
	m.publish(ctx, domain.EventPlanChanged, domain.KeySubscription)

	m.log.Info().Str("from", oldPlanID).Str("to", planID).Msg("plan updated")
	return true
}

// UpdateSettings shallow-merges patch into the settings bag.
func (m *AccountManager) UpdateSettings(ctx context.Context, patch map[string]any) bool {
	if patch == nil {
		return false
	}
	if !m.mergeSettings(ctx, patch) {
		return false
	}
	m.bus.Emit(domain.EventSettingsUpdated, patch)
	m.publish(ctx, domain.EventSettingsUpdated, domain.KeySettings)
	return true
}

// Settings returns the current settings bag; never nil.
func (m *AccountManager) Settings(ctx context.Context) map[string]any {
	bag := make(map[string]any)
	if raw, found := m.store.Get(ctx, domain.KeySettings); found {
		if err := json.Unmarshal(raw, &bag); err != nil {
			m.log.Warn().Err(err).Msg("stored settings are malformed, returning empty bag")
		}
	}
	return bag
}

func (m *AccountManager) mergeSettings(ctx context.Context, patch map[string]any) bool {
	bag := m.Settings(ctx)
	for k, v := range patch {
		bag[k] = v
	}
	if !m.store.Set(ctx, domain.KeySettings, bag) {
		m.enqueueWrite(domain.KeySettings, bag)
		return false
	}
	return true
}

// ClearUserData removes the user record and subscription (settings only on
// request), drops the cache, stops the sync loop, and broadcasts a logout.
func (m *AccountManager) ClearUserData(ctx context.Context, clearSettings bool) {
	m.clearStored(ctx, clearSettings)

	m.mu.Lock()
	m.cache = nil
	m.mu.Unlock()
	m.stopSyncLoop()

	m.bus.Emit(domain.EventLoggedOut, nil)
	m.publish(ctx, domain.EventLoggedOut, domain.KeyUserData, domain.KeySubscription)
	m.log.Info().Msg("user data cleared")
}

func (m *AccountManager) clearStored(ctx context.Context, clearSettings bool) {
	m.store.Remove(ctx, domain.KeyUserData)
	m.store.Remove(ctx, domain.KeySubscription)
	m.store.Remove(ctx, domain.KeyLastSync)
	if clearSettings {
		m.store.Remove(ctx, domain.KeySettings)
	}
}

// HasAccess reports whether the loaded user's plan grants feature.
// False when no user is loaded.
func (m *AccountManager) HasAccess(feature string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cache == nil {
		return false
	}
	return m.cache.Permissions.Allows(feature)
}

// HasPlan reports whether the loaded user's plan is at least minPlanID in
// the catalog order. False when no user is loaded or minPlanID is unknown.
func (m *AccountManager) HasPlan(minPlanID string) bool {
	minIdx := domain.PlanIndex(minPlanID)
	if minIdx < 0 {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cache == nil {
		return false
	}
	return domain.PlanIndex(m.cache.PlanID) >= minIdx
}

func (m *AccountManager) IsLoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cache != nil
}

// TrackActivity appends an entry to the capped recent-activity log, emits
// activity_tracked, and hands the entry to the archiver.
func (m *AccountManager) TrackActivity(ctx context.Context, action string, meta map[string]any) {
	entry := domain.ActivityEntry{
		Action:    action,
		Meta:      meta,
		Timestamp: m.now().UTC(),
	}
	m.mu.Lock()
	if m.cache != nil {
		entry.UserID = m.cache.ID
	}
	m.mu.Unlock()

	log := append([]domain.ActivityEntry{entry}, m.RecentActivity(ctx, activityLogCap-1)...)
	if !m.store.Set(ctx, domain.KeyActivityLog, log) {
		m.log.Warn().Str("action", action).Msg("activity log write failed")
	}

	m.bus.Emit(domain.EventActivityTracked, entry)
	if m.archiver != nil {
		m.archiver.Enqueue(entry)
	}
}

// RecentActivity returns up to limit entries, newest first.
func (m *AccountManager) RecentActivity(ctx context.Context, limit int) []domain.ActivityEntry {
	raw, found := m.store.Get(ctx, domain.KeyActivityLog)
	if !found {
		return nil
	}
	var entries []domain.ActivityEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		m.log.Warn().Err(err).Msg("stored activity log is malformed")
		return nil
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// publish sends a cross-instance change notice; failures are the
// broadcaster's to log.
func (m *AccountManager) publish(ctx context.Context, event string, keys ...string) {
	metrics.SyncNoticesTotal.WithLabelValues("sent").Inc()
	m.sync.Publish(ctx, domain.ChangeNotice{
		Instance: m.instance,
		Event:    event,
		Keys:     keys,
	})
}

// --- Offline write queue -----------------------------------------------------

func (m *AccountManager) enqueueWrite(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.writeQueue) >= maxQueuedWrites {
		m.log.Warn().Str("key", key).Msg("write queue full, dropping oldest entry")
		m.writeQueue = m.writeQueue[1:]
	}
	m.writeQueue = append(m.writeQueue, queuedWrite{key: key, value: value})
}

// flushWriteQueue replays queued writes; entries that still fail stay
// queued for the next pass.
func (m *AccountManager) flushWriteQueue(ctx context.Context) {
	m.mu.Lock()
	pending := m.writeQueue
	m.writeQueue = nil
	m.mu.Unlock()

	var remaining []queuedWrite
	for _, w := range pending {
		if m.store.Set(ctx, w.key, w.value) {
			metrics.WriteReplaysTotal.WithLabelValues("ok").Inc()
			continue
		}
		metrics.WriteReplaysTotal.WithLabelValues("retry").Inc()
		remaining = append(remaining, w)
	}
	if len(remaining) > 0 {
		m.mu.Lock()
		m.writeQueue = append(remaining, m.writeQueue...)
		m.mu.Unlock()
	}
}

func (m *AccountManager) queuedWrites() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.writeQueue)
}

// --- Background sync ---------------------------------------------------------

// ensureSyncLoop starts the periodic sync loop if a user is loaded and the
// loop is not already running.
func (m *AccountManager) ensureSyncLoop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.syncStop != nil || m.syncInterval <= 0 {
		return
	}
	stop := make(chan struct{})
	m.syncStop = stop
	go m.runSyncLoop(stop)
}

func (m *AccountManager) stopSyncLoop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.syncStop != nil {
		close(m.syncStop)
		m.syncStop = nil
	}
}

// runSyncLoop stamps last_sync and replays queued writes on each tick. The
// stamp is idempotent; a missed tick has no consequence.
func (m *AccountManager) runSyncLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(m.syncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), storeCallTimeout)
			m.store.Set(ctx, domain.KeyLastSync, m.now().UTC())
			m.flushWriteQueue(ctx)
			cancel()
		}
	}
}

// toSubscription converts a patch sub-object into a Subscription.
func toSubscription(v any) (domain.Subscription, bool) {
	switch sub := v.(type) {
	case domain.Subscription:
		return sub, true
	case *domain.Subscription:
		if sub == nil {
			return domain.Subscription{}, false
		}
		return *sub, true
	case map[string]any:
		raw, err := json.Marshal(sub)
		if err != nil {
			return domain.Subscription{}, false
		}
		var out domain.Subscription
		if err := json.Unmarshal(raw, &out); err != nil {
			return domain.Subscription{}, false
		}
		return out, true
	default:
		return domain.Subscription{}, false
	}
}
