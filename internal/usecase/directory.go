package usecase

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/stone-realestate/leadops/internal/entity"
	"go.uber.org/zap"
)

const DefaultFetchPageSize = 100

type pageFetcher[T any] func(ctx context.Context, limit, offset int) ([]T, error)

// fetchAll requests pages sequentially until one comes back short or empty.
func fetchAll[T any](ctx context.Context, pageSize int, fetch pageFetcher[T]) ([]T, error) {
	var all []T
	for offset := 0; ; offset += pageSize {
		page, err := fetch(ctx, pageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}

// collection is the guarded slice shared by every directory. Each load takes
// a generation number and only the newest one may commit.
type collection[T any] struct {
	mu         sync.RWMutex
	items      []T
	err        error
	loaded     bool
	generation uint64
}

func (c *collection[T]) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	return c.generation
}

func (c *collection[T]) commit(gen uint64, items []T, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return false
	}
	c.items = items
	c.err = err
	c.loaded = true
	return true
}

func (c *collection[T]) snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

func (c *collection[T]) replace(match func(T) bool, item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.IndexFunc(c.items, match)
	if i < 0 {
		return false
	}
	next := slices.Clone(c.items)
	next[i] = item
	c.items = next
	return true
}

func (c *collection[T]) remove(match func(T) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = slices.DeleteFunc(slices.Clone(c.items), match)
}

func (c *collection[T]) append(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := make([]T, 0, len(c.items)+1)
	c.items = append(append(next, c.items...), item)
}

func (c *collection[T]) state() (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded, c.err
}

// load runs one generation of fetchAll and commits the outcome. A failed
// load empties the collection.
func (c *collection[T]) load(ctx context.Context, resource string, pageSize int, fetch pageFetcher[T], keep func(T) bool) ([]T, error) {
	gen := c.begin()
	items, err := fetchAll(ctx, pageSize, fetch)
	if err != nil {
		ferr := &FetchError{Resource: resource, Err: ClassifyError(err)}
		if !c.commit(gen, nil, ferr) {
			return nil, ErrLoadSuperseded
		}
		return nil, ferr
	}
	if keep != nil {
		items = slices.DeleteFunc(items, func(item T) bool { return !keep(item) })
	}
	if items == nil {
		items = []T{}
	}
	if !c.commit(gen, items, nil) {
		return nil, ErrLoadSuperseded
	}
	return slices.Clone(items), nil
}

type DirectoryOptions struct {
	PageSize int
	// Timeout bounds a whole load; zero leaves it to the caller's context.
	Timeout  time.Duration
	Logger   *zap.Logger
	Recorder Recorder
}

func (o DirectoryOptions) withDefaults() DirectoryOptions {
	if o.PageSize <= 0 {
		o.PageSize = DefaultFetchPageSize
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
	return o
}

func (o DirectoryOptions) context(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.Timeout > 0 {
		return context.WithTimeout(ctx, o.Timeout)
	}
	return context.WithCancel(ctx)
}

// LeadDirectory owns the active (not soft-deleted) leads of one session.
type LeadDirectory struct {
	gateway LeadGateway
	opts    DirectoryOptions
	leads   collection[entity.Lead]
}

func NewLeadDirectory(gateway LeadGateway, opts DirectoryOptions) *LeadDirectory {
	return &LeadDirectory{gateway: gateway, opts: opts.withDefaults()}
}

// LoadAll replaces the directory with the full active collection.
func (d *LeadDirectory) LoadAll(ctx context.Context) ([]entity.Lead, error) {
	ctx, cancel := d.opts.context(ctx)
	defer cancel()

	leads, err := d.leads.load(ctx, "leads", d.opts.PageSize, d.gateway.ListLeads, func(l entity.Lead) bool {
		return !l.IsDeleted()
	})
	d.opts.Recorder.ObserveLoad("leads", len(leads), err)
	if err != nil {
		d.opts.Logger.Warn("lead load failed", zap.Error(err))
		return nil, err
	}
	d.opts.Logger.Debug("leads loaded", zap.Int("count", len(leads)))
	return leads, nil
}

// ApplyPatch replaces the lead with the same id. Unknown ids are ignored.
func (d *LeadDirectory) ApplyPatch(lead entity.Lead) bool {
	return d.leads.replace(func(l entity.Lead) bool { return l.ID == lead.ID }, lead)
}

func (d *LeadDirectory) Remove(id string) {
	d.leads.remove(func(l entity.Lead) bool { return l.ID == id })
}

func (d *LeadDirectory) Find(id string) (entity.Lead, bool) {
	d.leads.mu.RLock()
	defer d.leads.mu.RUnlock()
	for _, l := range d.leads.items {
		if l.ID == id {
			return l.Clone(), true
		}
	}
	return entity.Lead{}, false
}

func (d *LeadDirectory) Snapshot() []entity.Lead {
	return d.leads.snapshot()
}

// Err is the error of the last load, if it failed.
func (d *LeadDirectory) Err() error {
	_, err := d.leads.state()
	return err
}

func (d *LeadDirectory) Loaded() bool {
	loaded, _ := d.leads.state()
	return loaded
}

type AdminDirectory struct {
	gateway AdminGateway
	opts    DirectoryOptions
	admins  collection[entity.Admin]
}

func NewAdminDirectory(gateway AdminGateway, opts DirectoryOptions) *AdminDirectory {
	return &AdminDirectory{gateway: gateway, opts: opts.withDefaults()}
}

func (d *AdminDirectory) LoadAll(ctx context.Context) ([]entity.Admin, error) {
	ctx, cancel := d.opts.context(ctx)
	defer cancel()

	admins, err := d.admins.load(ctx, "admins", d.opts.PageSize, d.gateway.ListAdmins, nil)
	d.opts.Recorder.ObserveLoad("admins", len(admins), err)
	if err != nil {
		d.opts.Logger.Warn("admin load failed", zap.Error(err))
		return nil, err
	}
	return admins, nil
}

func (d *AdminDirectory) Add(admin entity.Admin) {
	d.admins.append(admin)
}

func (d *AdminDirectory) Snapshot() []entity.Admin {
	return d.admins.snapshot()
}

func (d *AdminDirectory) Err() error {
	_, err := d.admins.state()
	return err
}

func (d *AdminDirectory) Loaded() bool {
	loaded, _ := d.admins.state()
	return loaded
}

type MessageDirectory struct {
	gateway  MessageGateway
	opts     DirectoryOptions
	messages collection[entity.Message]
}

func NewMessageDirectory(gateway MessageGateway, opts DirectoryOptions) *MessageDirectory {
	return &MessageDirectory{gateway: gateway, opts: opts.withDefaults()}
}

func (d *MessageDirectory) LoadAll(ctx context.Context) ([]entity.Message, error) {
	ctx, cancel := d.opts.context(ctx)
	defer cancel()

	messages, err := d.messages.load(ctx, "messages", d.opts.PageSize, d.gateway.ListMessages, nil)
	d.opts.Recorder.ObserveLoad("messages", len(messages), err)
	if err != nil {
		d.opts.Logger.Warn("message load failed", zap.Error(err))
		return nil, err
	}
	return messages, nil
}

func (d *MessageDirectory) ApplyPatch(msg entity.Message) bool {
	return d.messages.replace(func(m entity.Message) bool { return m.ID == msg.ID }, msg)
}

func (d *MessageDirectory) Find(id string) (entity.Message, bool) {
	d.messages.mu.RLock()
	defer d.messages.mu.RUnlock()
	for _, m := range d.messages.items {
		if m.ID == id {
			return m, true
		}
	}
	return entity.Message{}, false
}

func (d *MessageDirectory) Snapshot() []entity.Message {
	return d.messages.snapshot()
}

func (d *MessageDirectory) Err() error {
	_, err := d.messages.state()
	return err
}

func (d *MessageDirectory) Loaded() bool {
	loaded, _ := d.messages.state()
	return loaded
}
