package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/domain/lot"
	"github.com/hugohenrick/verduleria-api/internal/domain/pricing"
	"github.com/hugohenrick/verduleria-api/internal/domain/promotion"
	"github.com/hugohenrick/verduleria-api/internal/domain/session"
	"github.com/hugohenrick/verduleria-api/internal/domain/user"
	"github.com/hugohenrick/verduleria-api/internal/infrastructure/lock"
	"github.com/hugohenrick/verduleria-api/internal/infrastructure/storage"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// ── Almacén en memoria ───────────────────────────────────────────────────────

// memStore guarda copias por valor, como lo haría la base
type memStore struct {
	users     map[string]user.User
	products  map[string]catalog.Product
	variants  map[string]catalog.Variant
	suppliers map[string]catalog.Supplier
	sessions  map[string]session.Session
	items     map[string]session.Item
	lots      []lot.Lot
	prices    map[string]pricing.DailyPrice
	margins   []pricing.Margin
	promos    map[string]promotion.Promotion
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[string]user.User{},
		products:  map[string]catalog.Product{},
		variants:  map[string]catalog.Variant{},
		suppliers: map[string]catalog.Supplier{},
		sessions:  map[string]session.Session{},
		items:     map[string]session.Item{},
		prices:    map[string]pricing.DailyPrice{},
		promos:    map[string]promotion.Promotion{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (st *memStore) snapshot() memStore {
	return memStore{
		users:     cloneMap(st.users),
		products:  cloneMap(st.products),
		variants:  cloneMap(st.variants),
		suppliers: cloneMap(st.suppliers),
		sessions:  cloneMap(st.sessions),
		items:     cloneMap(st.items),
		lots:      append([]lot.Lot(nil), st.lots...),
		prices:    cloneMap(st.prices),
		margins:   append([]pricing.Margin(nil), st.margins...),
		promos:    cloneMap(st.promos),
	}
}

// memTx restaura el almacén si fn falla
type memTx struct {
	st    *memStore
	calls int
}

func (t *memTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	snap := t.st.snapshot()
	if err := fn(ctx); err != nil {
		*t.st = snap
		return err
	}
	return nil
}

var _ Transactor = (*memTx)(nil)

// ── Usuarios ─────────────────────────────────────────────────────────────────

type memUserRepo struct{ st *memStore }

var _ user.Repository = (*memUserRepo)(nil)

func (r *memUserRepo) Create(_ context.Context, u *user.User) error {
	for _, x := range r.st.users {
		if x.Username == u.Username {
			return user.ErrDuplicateUsername
		}
	}
	r.st.users[u.ID] = *u
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*user.User, error) {
	u, ok := r.st.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*user.User, error) {
	username = user.NormalizeUsername(username)
	for _, u := range r.st.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *memUserRepo) List(_ context.Context, role user.Role) ([]*user.User, error) {
	var out []*user.User
	for _, u := range r.st.users {
		if role == "" || u.Role == role {
			u := u
			out = append(out, &u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *memUserRepo) Update(_ context.Context, u *user.User) error {
	if _, ok := r.st.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	for _, x := range r.st.users {
		if x.ID != u.ID && x.Username == u.Username {
			return user.ErrDuplicateUsername
		}
	}
	r.st.users[u.ID] = *u
	return nil
}

func (r *memUserRepo) UpdateLastLogin(_ context.Context, id string) error {
	u, ok := r.st.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	r.st.users[id] = u
	return nil
}

func (r *memUserRepo) CountByRole(_ context.Context, role user.Role) (int, error) {
	n := 0
	for _, u := range r.st.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// ── Catálogo ─────────────────────────────────────────────────────────────────

type memProductRepo struct{ st *memStore }

var _ catalog.ProductRepository = (*memProductRepo)(nil)

func (r *memProductRepo) Create(_ context.Context, p *catalog.Product) error {
	for _, x := range r.st.products {
		if strings.EqualFold(x.Name, p.Name) {
			return catalog.ErrDuplicateProduct
		}
	}
	r.st.products[p.ID] = *p
	return nil
}

func (r *memProductRepo) FindByID(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := r.st.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return &p, nil
}

func (r *memProductRepo) List(_ context.Context, f catalog.Filter) ([]*catalog.Product, error) {
	var out []*catalog.Product
	for _, p := range r.st.products {
		if f.OnlyActive && !p.Active {
			continue
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Query)) {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memProductRepo) Update(_ context.Context, p *catalog.Product) error {
	if _, ok := r.st.products[p.ID]; !ok {
		return catalog.ErrProductNotFound
	}
	r.st.products[p.ID] = *p
	return nil
}

type memVariantRepo struct{ st *memStore }

var _ catalog.VariantRepository = (*memVariantRepo)(nil)

// withProduct completa los datos del producto como el join del repositorio real
func (r *memVariantRepo) withProduct(v catalog.Variant) *catalog.Variant {
	if p, ok := r.st.products[v.ProductID]; ok {
		v.ProductName = p.Name
		v.Category = p.Category
	}
	return &v
}

func (r *memVariantRepo) Create(_ context.Context, v *catalog.Variant) error {
	for _, x := range r.st.variants {
		if x.ProductID == v.ProductID && strings.EqualFold(x.NameVariant, v.NameVariant) {
			return catalog.ErrDuplicateVariant
		}
	}
	r.st.variants[v.ID] = *v
	return nil
}

func (r *memVariantRepo) FindByID(_ context.Context, id string) (*catalog.Variant, error) {
	v, ok := r.st.variants[id]
	if !ok {
		return nil, catalog.ErrVariantNotFound
	}
	return r.withProduct(v), nil
}

func (r *memVariantRepo) FindByIDs(_ context.Context, ids []string) (map[string]*catalog.Variant, error) {
	out := make(map[string]*catalog.Variant, len(ids))
	for _, id := range ids {
		if v, ok := r.st.variants[id]; ok {
			out[id] = r.withProduct(v)
		}
	}
	return out, nil
}

func (r *memVariantRepo) List(_ context.Context, f catalog.Filter) ([]*catalog.Variant, error) {
	var out []*catalog.Variant
	for _, v := range r.st.variants {
		if f.OnlyActive && !v.Active {
			continue
		}
		out = append(out, r.withProduct(v))
	}
	sort.Slice(out, func(i, j int) bool { return catalogLess(out[i], out[j]) })
	return out, nil
}

func (r *memVariantRepo) Update(_ context.Context, v *catalog.Variant) error {
	if _, ok := r.st.variants[v.ID]; !ok {
		return catalog.ErrVariantNotFound
	}
	stored := *v
	stored.ProductName, stored.Category = "", ""
	r.st.variants[v.ID] = stored
	return nil
}

type memSupplierRepo struct{ st *memStore }

var _ catalog.SupplierRepository = (*memSupplierRepo)(nil)

func (r *memSupplierRepo) Create(_ context.Context, s *catalog.Supplier) error {
	for _, x := range r.st.suppliers {
		if x.Nickname == s.Nickname {
			return catalog.ErrDuplicateSupplier
		}
	}
	r.st.suppliers[s.ID] = *s
	return nil
}

func (r *memSupplierRepo) FindByID(_ context.Context, id string) (*catalog.Supplier, error) {
	s, ok := r.st.suppliers[id]
	if !ok {
		return nil, catalog.ErrSupplierNotFound
	}
	return &s, nil
}

func (r *memSupplierRepo) List(_ context.Context, f catalog.Filter) ([]*catalog.Supplier, error) {
	var out []*catalog.Supplier
	for _, s := range r.st.suppliers {
		if f.OnlyActive && !s.Active {
			continue
		}
		s := s
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nickname < out[j].Nickname })
	return out, nil
}

func (r *memSupplierRepo) Update(_ context.Context, s *catalog.Supplier) error {
	if _, ok := r.st.suppliers[s.ID]; !ok {
		return catalog.ErrSupplierNotFound
	}
	r.st.suppliers[s.ID] = *s
	return nil
}

// ── Sesiones ─────────────────────────────────────────────────────────────────

type memSessionRepo struct{ st *memStore }

var _ session.Repository = (*memSessionRepo)(nil)

func (r *memSessionRepo) Create(_ context.Context, s *session.Session) error {
	for _, x := range r.st.sessions {
		if x.DateKey == s.DateKey {
			return session.ErrDuplicateDateKey
		}
		if !x.IsClosed() {
			return session.ErrActiveSession
		}
	}
	r.st.sessions[s.ID] = *s
	return nil
}

func (r *memSessionRepo) FindByID(_ context.Context, id string) (*session.Session, error) {
	s, ok := r.st.sessions[id]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return &s, nil
}

func (r *memSessionRepo) FindByIDForUpdate(ctx context.Context, id string) (*session.Session, error) {
	return r.FindByID(ctx, id)
}

func (r *memSessionRepo) FindByIDForShare(ctx context.Context, id string) (*session.Session, error) {
	return r.FindByID(ctx, id)
}

func (r *memSessionRepo) FindActive(_ context.Context) (*session.Session, error) {
	for _, s := range r.st.sessions {
		if !s.IsClosed() {
			return &s, nil
		}
	}
	return nil, session.ErrSessionNotFound
}

func (r *memSessionRepo) FindByDateKey(_ context.Context, dateKey string) (*session.Session, error) {
	for _, s := range r.st.sessions {
		if s.DateKey == dateKey {
			return &s, nil
		}
	}
	return nil, session.ErrSessionNotFound
}

func (r *memSessionRepo) List(_ context.Context, limit int) ([]*session.Session, error) {
	if limit <= 0 {
		limit = 30
	}
	out := make([]*session.Session, 0, len(r.st.sessions))
	for _, s := range r.st.sessions {
		s := s
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateKey > out[j].DateKey })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memSessionRepo) Update(_ context.Context, s *session.Session) error {
	if _, ok := r.st.sessions[s.ID]; !ok {
		return session.ErrSessionNotFound
	}
	r.st.sessions[s.ID] = *s
	return nil
}

type memItemRepo struct {
	st *memStore
	// beforeWrite corre antes de cada alta o baja, con la operación en curso
	beforeWrite func()
}

func (r *memItemRepo) hook() {
	if r.beforeWrite != nil {
		r.beforeWrite()
	}
}

var _ session.ItemRepository = (*memItemRepo)(nil)

func (r *memItemRepo) Create(_ context.Context, it *session.Item) error {
	r.hook()
	for _, x := range r.st.items {
		if x.SessionID == it.SessionID && x.VariantID == it.VariantID {
			return session.ErrDuplicateItem
		}
	}
	r.st.items[it.ID] = *it
	return nil
}

func (r *memItemRepo) FindByID(_ context.Context, sessionID, id string) (*session.Item, error) {
	it, ok := r.st.items[id]
	if !ok || it.SessionID != sessionID {
		return nil, session.ErrItemNotFound
	}
	return &it, nil
}

func (r *memItemRepo) FindByIDForUpdate(ctx context.Context, sessionID, id string) (*session.Item, error) {
	return r.FindByID(ctx, sessionID, id)
}

func (r *memItemRepo) ListBySession(_ context.Context, sessionID string) ([]*session.Item, error) {
	var out []*session.Item
	for _, it := range r.st.items {
		if it.SessionID == sessionID {
			it := it
			out = append(out, &it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memItemRepo) CountByOrigin(_ context.Context, sessionID string, origin session.Origin) (int, error) {
	n := 0
	for _, it := range r.st.items {
		if it.SessionID == sessionID && it.Origin == origin {
			n++
		}
	}
	return n, nil
}

func (r *memItemRepo) ExistsVariant(_ context.Context, sessionID, variantID string) (bool, error) {
	for _, it := range r.st.items {
		if it.SessionID == sessionID && it.VariantID == variantID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memItemRepo) LastPurchasedBefore(_ context.Context, variantID, dateKey string) (*session.Item, error) {
	var best *session.Item
	bestKey := ""
	for _, it := range r.st.items {
		s := r.st.sessions[it.SessionID]
		if it.VariantID != variantID || s.DateKey >= dateKey || !it.Purchase.BoughtQty.IsPositive() {
			continue
		}
		if best == nil || s.DateKey > bestKey {
			it := it
			best, bestKey = &it, s.DateKey
		}
	}
	if best == nil {
		return nil, session.ErrItemNotFound
	}
	return best, nil
}

func (r *memItemRepo) Update(_ context.Context, it *session.Item) error {
	if _, ok := r.st.items[it.ID]; !ok {
		return session.ErrItemNotFound
	}
	r.st.items[it.ID] = *it
	return nil
}

func (r *memItemRepo) Delete(_ context.Context, sessionID, id string) error {
	r.hook()
	it, ok := r.st.items[id]
	if !ok || it.SessionID != sessionID {
		return session.ErrItemNotFound
	}
	for _, l := range r.st.lots {
		if l.ItemID == id {
			return session.ErrItemBought
		}
	}
	delete(r.st.items, id)
	return nil
}

// ── Lotes ────────────────────────────────────────────────────────────────────

var errBatchFailed = errors.New("falla simulada del batch")

var _ ImageStore = (*memImageStore)(nil)

type memLotRepo struct {
	st *memStore
	// failAfter hace fallar CreateBatch después de n llamadas exitosas (0 = nunca)
	failAfter int
	batches   int
}

var _ lot.Repository = (*memLotRepo)(nil)

func (r *memLotRepo) CreateBatch(_ context.Context, lots []*lot.Lot) error {
	r.batches++
	if r.failAfter > 0 && r.batches > r.failAfter {
		return errBatchFailed
	}
	for _, l := range lots {
		if _, ok := r.st.suppliers[l.SupplierID]; !ok {
			return catalog.ErrSupplierNotFound
		}
	}
	for _, l := range lots {
		r.st.lots = append(r.st.lots, *l)
	}
	return nil
}

func (r *memLotRepo) find(id string) (int, error) {
	for i, l := range r.st.lots {
		if l.ID == id {
			return i, nil
		}
	}
	return -1, lot.ErrLotNotFound
}

func (r *memLotRepo) FindByID(_ context.Context, id string) (*lot.Lot, error) {
	i, err := r.find(id)
	if err != nil {
		return nil, err
	}
	l := r.st.lots[i]
	return &l, nil
}

func (r *memLotRepo) FindByIDForUpdate(ctx context.Context, id string) (*lot.Lot, error) {
	return r.FindByID(ctx, id)
}

func (r *memLotRepo) ListBySession(_ context.Context, sessionID string) ([]*lot.Lot, error) {
	var out []*lot.Lot
	for _, l := range r.st.lots {
		if l.SessionID == sessionID {
			l := l
			out = append(out, &l)
		}
	}
	return out, nil
}

func (r *memLotRepo) ListBySessionVariant(_ context.Context, sessionID, variantID string) ([]*lot.Lot, error) {
	var out []*lot.Lot
	for _, l := range r.st.lots {
		if l.SessionID == sessionID && l.VariantID == variantID {
			l := l
			out = append(out, &l)
		}
	}
	return out, nil
}

func (r *memLotRepo) VariantIDsBySession(_ context.Context, sessionID string) ([]string, error) {
	var ids []string
	seen := map[string]bool{}
	for _, l := range r.st.lots {
		if l.SessionID == sessionID && !seen[l.VariantID] {
			seen[l.VariantID] = true
			ids = append(ids, l.VariantID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *memLotRepo) UpdateWeight(_ context.Context, l *lot.Lot) error {
	i, err := r.find(l.ID)
	if err != nil {
		return err
	}
	r.st.lots[i].NetWeightKg = l.NetWeightKg
	r.st.lots[i].WeighedAt = l.WeighedAt
	r.st.lots[i].UpdatedAt = l.UpdatedAt
	return nil
}

func (r *memLotRepo) UpdatePayment(_ context.Context, l *lot.Lot) error {
	i, err := r.find(l.ID)
	if err != nil {
		return err
	}
	r.st.lots[i].PaymentMethod = l.PaymentMethod
	r.st.lots[i].PaymentNote = l.PaymentNote
	return nil
}

func (r *memLotRepo) UpdatePaymentByGroup(_ context.Context, g lot.PaymentGroup, method lot.PaymentMethod, note string) (int64, error) {
	var n int64
	for i, l := range r.st.lots {
		if l.SessionID == g.SessionID && l.VariantID == g.VariantID && l.SupplierID == g.SupplierID {
			r.st.lots[i].PaymentMethod = method
			r.st.lots[i].PaymentNote = note
			n++
		}
	}
	return n, nil
}

// ── Precios ──────────────────────────────────────────────────────────────────

type memPriceRepo struct {
	st      *memStore
	upserts int
}

var _ pricing.Repository = (*memPriceRepo)(nil)

func (r *memPriceRepo) Upsert(_ context.Context, dp *pricing.DailyPrice) error {
	r.upserts++
	for id, x := range r.st.prices {
		if x.SessionID == dp.SessionID && x.VariantID == dp.VariantID {
			dp.ID = id
			dp.CreatedAt = x.CreatedAt
			break
		}
	}
	r.st.prices[dp.ID] = *dp
	return nil
}

func (r *memPriceRepo) FindByID(_ context.Context, id string) (*pricing.DailyPrice, error) {
	dp, ok := r.st.prices[id]
	if !ok {
		return nil, pricing.ErrDailyPriceNotFound
	}
	return &dp, nil
}

func (r *memPriceRepo) FindBySessionVariant(_ context.Context, sessionID, variantID string) (*pricing.DailyPrice, error) {
	for _, dp := range r.st.prices {
		if dp.SessionID == sessionID && dp.VariantID == variantID {
			return &dp, nil
		}
	}
	return nil, pricing.ErrDailyPriceNotFound
}

func (r *memPriceRepo) ListBySession(_ context.Context, sessionID string) ([]*pricing.DailyPrice, error) {
	var out []*pricing.DailyPrice
	for _, dp := range r.st.prices {
		if dp.SessionID == sessionID {
			dp := dp
			out = append(out, &dp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VariantID < out[j].VariantID })
	return out, nil
}

// latest recorre precios de sesiones anteriores a dateKey que cumplan keep
func (r *memPriceRepo) latest(variantID, dateKey string, keep func(pricing.DailyPrice) bool) (*pricing.DailyPrice, string) {
	var best *pricing.DailyPrice
	bestKey := ""
	for _, dp := range r.st.prices {
		s := r.st.sessions[dp.SessionID]
		if (variantID != "" && dp.VariantID != variantID) || s.DateKey >= dateKey || !keep(dp) {
			continue
		}
		if best == nil || s.DateKey > bestKey {
			dp := dp
			best, bestKey = &dp, s.DateKey
		}
	}
	return best, bestKey
}

func (r *memPriceRepo) PreviousPrice(_ context.Context, variantID, dateKey string) (*pricing.PreviousPrice, error) {
	dp, key := r.latest(variantID, dateKey, func(dp pricing.DailyPrice) bool { return dp.SalePrice != nil })
	if dp == nil {
		return nil, nil
	}
	return &pricing.PreviousPrice{DateKey: key, SalePrice: *dp.SalePrice}, nil
}

func (r *memPriceRepo) LastManualBefore(_ context.Context, variantID, dateKey string) (*pricing.PreviousPrice, error) {
	dp, key := r.latest(variantID, dateKey, func(dp pricing.DailyPrice) bool { return dp.LastManualSalePrice != nil })
	if dp == nil {
		return nil, nil
	}
	return &pricing.PreviousPrice{DateKey: key, SalePrice: *dp.LastManualSalePrice}, nil
}

func (r *memPriceRepo) LatestBefore(_ context.Context, dateKey string) (map[string]*pricing.LatestPrice, error) {
	out := map[string]*pricing.LatestPrice{}
	for _, dp := range r.st.prices {
		if _, done := out[dp.VariantID]; done {
			continue
		}
		best, key := r.latest(dp.VariantID, dateKey, func(dp pricing.DailyPrice) bool { return dp.SalePrice != nil })
		if best != nil {
			out[dp.VariantID] = &pricing.LatestPrice{DailyPrice: best, DateKey: key}
		}
	}
	return out, nil
}

type memMarginRepo struct{ st *memStore }

var _ pricing.MarginRepository = (*memMarginRepo)(nil)

func (r *memMarginRepo) Current(_ context.Context) (*pricing.Margin, error) {
	if len(r.st.margins) == 0 {
		return nil, pricing.ErrMarginNotFound
	}
	m := r.st.margins[len(r.st.margins)-1]
	return &m, nil
}

func (r *memMarginRepo) Append(_ context.Context, m *pricing.Margin) error {
	m.Version = int64(len(r.st.margins) + 1)
	r.st.margins = append(r.st.margins, *m)
	return nil
}

// ── Promociones ──────────────────────────────────────────────────────────────

type memPromotionRepo struct{ st *memStore }

var _ promotion.Repository = (*memPromotionRepo)(nil)

func (r *memPromotionRepo) Upsert(_ context.Context, p *promotion.Promotion) error {
	for id, x := range r.st.promos {
		if x.SessionID == p.SessionID && x.VariantID == p.VariantID {
			p.ID = id
			p.CreatedAt = x.CreatedAt
			break
		}
	}
	r.st.promos[p.ID] = *p
	return nil
}

func (r *memPromotionRepo) FindByID(_ context.Context, id string) (*promotion.Promotion, error) {
	p, ok := r.st.promos[id]
	if !ok {
		return nil, promotion.ErrPromotionNotFound
	}
	return &p, nil
}

func (r *memPromotionRepo) FindBySessionVariant(_ context.Context, sessionID, variantID string) (*promotion.Promotion, error) {
	for _, p := range r.st.promos {
		if p.SessionID == sessionID && p.VariantID == variantID {
			return &p, nil
		}
	}
	return nil, promotion.ErrPromotionNotFound
}

func (r *memPromotionRepo) ListBySession(_ context.Context, sessionID string) ([]*promotion.Promotion, error) {
	var out []*promotion.Promotion
	for _, p := range r.st.promos {
		if p.SessionID == sessionID {
			p := p
			out = append(out, &p)
		}
	}
	return out, nil
}

func (r *memPromotionRepo) Update(_ context.Context, p *promotion.Promotion) error {
	if _, ok := r.st.promos[p.ID]; !ok {
		return promotion.ErrPromotionNotFound
	}
	r.st.promos[p.ID] = *p
	return nil
}

// ── Puertos ──────────────────────────────────────────────────────────────────

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *recordingNotifier) Publish(_ context.Context, e Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) Named(name string) []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Event
	for _, e := range n.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

type memBoardCache struct {
	boards      map[string][]BoardRow
	invalidated int
}

func (c *memBoardCache) Get(_ context.Context, sessionID string, dest any) (bool, error) {
	rows, ok := c.boards[sessionID]
	if !ok {
		return false, nil
	}
	*(dest.(*[]BoardRow)) = rows
	return true, nil
}

func (c *memBoardCache) Set(_ context.Context, sessionID string, board any) error {
	c.boards[sessionID] = board.([]BoardRow)
	return nil
}

func (c *memBoardCache) Invalidate(_ context.Context, sessionID string) error {
	c.invalidated++
	delete(c.boards, sessionID)
	return nil
}

type memImageStore struct {
	deleted []string
}

func (s *memImageStore) Save(_ context.Context, folder string, _ io.Reader) (storage.StoredImage, error) {
	id := folder + "/img"
	return storage.StoredImage{URL: "/uploads/" + id + ".jpg", PublicID: id}, nil
}

func (s *memImageStore) Delete(_ context.Context, publicID string) error {
	s.deleted = append(s.deleted, publicID)
	return nil
}

type stubTokens struct{}

func (stubTokens) GenerateToken(u *user.User) (string, time.Time, error) {
	return "token-" + u.ID, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

// ── Entorno de prueba ────────────────────────────────────────────────────────

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time          { return c.now }
func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type env struct {
	st        *memStore
	clock     *fixedClock
	tx        *memTx
	items     *memItemRepo
	lots      *memLotRepo
	prices    *memPriceRepo
	notifier  *recordingNotifier
	cache     *memBoardCache
	images    *memImageStore
	catalog   CatalogService
	pricing   PricingService
	sessions  SessionService
	purchases PurchaseService
	promos    PromotionService
	users     UserService
	auth      AuthService
}

var (
	admin  = Actor{ID: "admin-1", Role: user.RoleAdmin}
	vendor = Actor{ID: "vendor-1", Role: user.RoleVendedor}
	other  = Actor{ID: "vendor-2", Role: user.RoleVendedor}
)

func newEnv() *env {
	st := newMemStore()
	e := &env{
		st:       st,
		clock:    &fixedClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
		tx:       &memTx{st: st},
		items:    &memItemRepo{st: st},
		lots:     &memLotRepo{st: st},
		prices:   &memPriceRepo{st: st},
		notifier: &recordingNotifier{},
		cache:    &memBoardCache{boards: map[string][]BoardRow{}},
		images:   &memImageStore{},
	}
	log := logger.Nop()
	sessions := &memSessionRepo{st: st}
	items := e.items
	variants := &memVariantRepo{st: st}
	products := &memProductRepo{st: st}
	suppliers := &memSupplierRepo{st: st}
	users := &memUserRepo{st: st}
	locker := lock.NewLocalLocker()

	e.catalog = NewCatalogService(products, variants, suppliers, e.images, log)
	e.pricing = NewPricingService(PricingDeps{
		Sessions:      sessions,
		Variants:      variants,
		Lots:          e.lots,
		Prices:        e.prices,
		Margins:       &memMarginRepo{st: st},
		Tx:            e.tx,
		Locker:        locker,
		Cache:         e.cache,
		Notifier:      e.notifier,
		DefaultMargin: decimal.RequireFromString("0.35"),
		Clock:         e.clock.Now,
		Logger:        log,
	})
	e.sessions = NewSessionService(SessionDeps{
		Sessions: sessions,
		Items:    items,
		Variants: variants,
		Lots:     e.lots,
		Pricing:  e.pricing,
		Tx:       e.tx,
		Locker:   locker,
		Location: time.UTC,
		Clock:    e.clock.Now,
		Logger:   log,
	})
	e.purchases = NewPurchaseService(PurchaseDeps{
		Sessions:  sessions,
		Items:     items,
		Lots:      e.lots,
		Variants:  variants,
		Suppliers: suppliers,
		Pricing:   e.pricing,
		Tx:        e.tx,
		Locker:    locker,
		Clock:     e.clock.Now,
		Logger:    log,
	})
	e.promos = NewPromotionService(PromotionDeps{
		Sessions:   sessions,
		Promotions: &memPromotionRepo{st: st},
		Variants:   variants,
		Prices:     e.prices,
		Images:     e.images,
		Notifier:   e.notifier,
		Clock:      e.clock.Now,
		Logger:     log,
	})
	e.users = NewUserService(users, log)
	e.auth = NewAuthService(users, stubTokens{}, e.tx, log)
	return e
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intp(n int) *int {
	return &n
}
