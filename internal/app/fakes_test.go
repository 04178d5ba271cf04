package app

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"oneday/internal/domain/category"
	"oneday/internal/domain/notification"
	"oneday/internal/domain/reminder"
	"oneday/internal/domain/task"
	idb "oneday/internal/infra/database"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// ticker hands out strictly increasing timestamps for arrival order.
type ticker struct {
	mu sync.Mutex
	t  time.Time
}

func newTicker() *ticker {
	return &ticker{t: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *ticker) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type memReminderRepo struct {
	clock *ticker
	seq   int
	items map[string]*reminder.Reminder
}

func newMemReminderRepo() *memReminderRepo {
	return &memReminderRepo{clock: newTicker(), items: make(map[string]*reminder.Reminder)}
}

// insert bypasses the duplicate check, like an unchecked write.
func (r *memReminderRepo) insert(t reminder.Time) *reminder.Reminder {
	rem := &reminder.Reminder{Time: t}
	_ = r.Create(context.Background(), rem)
	return rem
}

func (r *memReminderRepo) List(context.Context) ([]*reminder.Reminder, error) {
	out := make([]*reminder.Reminder, 0, len(r.items))
	for _, rem := range r.items {
		cp := *rem
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memReminderRepo) GetByID(_ context.Context, id string) (*reminder.Reminder, error) {
	rem, ok := r.items[id]
	if !ok {
		return nil, idb.ErrReminderNotFound
	}
	cp := *rem
	return &cp, nil
}

func (r *memReminderRepo) Create(_ context.Context, rem *reminder.Reminder) error {
	r.seq++
	rem.ID = fmt.Sprintf("r%d", r.seq)
	rem.CreatedAt = r.clock.next()
	rem.UpdatedAt = rem.CreatedAt
	cp := *rem
	r.items[rem.ID] = &cp
	return nil
}

func (r *memReminderRepo) Update(_ context.Context, rem *reminder.Reminder) error {
	stored, ok := r.items[rem.ID]
	if !ok {
		return idb.ErrReminderNotFound
	}
	stored.Time = rem.Time
	stored.UpdatedAt = r.clock.next()
	return nil
}

func (r *memReminderRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return idb.ErrReminderNotFound
	}
	delete(r.items, id)
	return nil
}

type memCategoryRepo struct {
	clock *ticker
	seq   int
	items map[string]*category.Category
	tasks *memTaskRepo
}

func (r *memCategoryRepo) Create(_ context.Context, c *category.Category) error {
	r.seq++
	c.ID = fmt.Sprintf("c%d", r.seq)
	c.CreatedAt = r.clock.next()
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *memCategoryRepo) GetByID(_ context.Context, id string) (*category.Category, error) {
	c, ok := r.items[id]
	if !ok {
		return nil, idb.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCategoryRepo) Update(_ context.Context, c *category.Category) error {
	stored, ok := r.items[c.ID]
	if !ok {
		return idb.ErrCategoryNotFound
	}
	stored.Title = c.Title
	return nil
}

func (r *memCategoryRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return idb.ErrCategoryNotFound
	}
	delete(r.items, id)
	for tid, t := range r.tasks.items {
		if t.CategoryID == id {
			delete(r.tasks.items, tid)
		}
	}
	return nil
}

func (r *memCategoryRepo) List(context.Context) ([]*category.Category, error) {
	out := make([]*category.Category, 0, len(r.items))
	for _, c := range r.items {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memTaskRepo struct {
	clock      *ticker
	seq        int
	items      map[string]*task.Task
	categories *memCategoryRepo
}

func (r *memTaskRepo) Create(_ context.Context, t *task.Task) error {
	if _, ok := r.categories.items[t.CategoryID]; !ok {
		return idb.ErrCategoryNotFound
	}
	r.seq++
	t.ID = fmt.Sprintf("t%d", r.seq)
	t.CreatedAt = r.clock.next()
	cp := *t
	r.items[t.ID] = &cp
	return nil
}

func (r *memTaskRepo) GetByID(_ context.Context, id string) (*task.Task, error) {
	t, ok := r.items[id]
	if !ok {
		return nil, idb.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTaskRepo) Update(_ context.Context, t *task.Task) error {
	if _, ok := r.items[t.ID]; !ok {
		return idb.ErrTaskNotFound
	}
	cp := *t
	r.items[t.ID] = &cp
	return nil
}

func (r *memTaskRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return idb.ErrTaskNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memTaskRepo) ListByCategory(ctx context.Context, categoryID string) ([]*task.Task, error) {
	all, _ := r.ListAll(ctx)
	out := all[:0]
	for _, t := range all {
		if t.CategoryID == categoryID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTaskRepo) ListAll(context.Context) ([]*task.Task, error) {
	out := make([]*task.Task, 0, len(r.items))
	for _, t := range r.items {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memTaskRepo) ListCompleted(ctx context.Context) ([]*task.Task, error) {
	all, _ := r.ListAll(ctx)
	out := all[:0]
	for _, t := range all {
		if t.IsCompleted {
			out = append(out, t)
		}
	}
	return out, nil
}

func newMemPlannerRepos() (*memCategoryRepo, *memTaskRepo) {
	clock := newTicker()
	cats := &memCategoryRepo{clock: clock, items: make(map[string]*category.Category)}
	tasks := &memTaskRepo{clock: clock, items: make(map[string]*task.Task), categories: cats}
	cats.tasks = tasks
	return cats, tasks
}

type fakeScheduler struct {
	alerts map[string]notification.Alert
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{alerts: make(map[string]notification.Alert)}
}

func (f *fakeScheduler) Schedule(_ context.Context, a notification.Alert) error {
	f.alerts[a.Identifier] = a
	return nil
}

func (f *fakeScheduler) Cancel(identifier string) error {
	delete(f.alerts, identifier)
	return nil
}

func (f *fakeScheduler) Scheduled() []string {
	ids := make([]string, 0, len(f.alerts))
	for id := range f.alerts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type countingRefresher struct{ calls int }

func (c *countingRefresher) RefreshBodies(context.Context) error {
	c.calls++
	return nil
}
