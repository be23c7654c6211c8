package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"community/internal/models"
)

// memData хранит значения, а не указатели: clone копирует только карты.
type memData struct {
	accounts map[string]models.Account
	articles map[string]models.Article
	comments map[string]models.Comment
}

func newMemData() *memData {
	return &memData{
		accounts: map[string]models.Account{},
		articles: map[string]models.Article{},
		comments: map[string]models.Comment{},
	}
}

func (d *memData) clone() *memData {
	cp := newMemData()
	for k, v := range d.accounts {
		cp.accounts[k] = v
	}
	for k, v := range d.articles {
		cp.articles[k] = v
	}
	for k, v := range d.comments {
		cp.comments[k] = v
	}
	return cp
}

// MemoryStore: хранилище в памяти для STORAGE=memory и тестов.
// Транзакции сериализуются мьютексом и работают на копии данных.
type MemoryStore struct {
	mu   sync.Mutex
	data *memData
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: newMemData(), now: time.Now}
}

type memAccess func(fn func(d *memData) error) error

func (s *MemoryStore) Repos() Repos {
	return s.bind(func(fn func(d *memData) error) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn(s.data)
	})
}

func (s *MemoryStore) InTx(ctx context.Context, fn func(r Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.data.clone()
	repos := s.bind(func(f func(d *memData) error) error { return f(work) })
	if err := fn(repos); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (s *MemoryStore) bind(access memAccess) Repos {
	return Repos{
		Accounts: &memAccounts{do: access, now: s.now},
		Articles: &memArticles{do: access, now: s.now},
		Comments: &memComments{do: access, now: s.now},
	}
}

type memAccounts struct {
	do  memAccess
	now func() time.Time
}

func (r *memAccounts) Create(_ context.Context, a *models.Account) error {
	return r.do(func(d *memData) error {
		if _, ok := d.accounts[a.UserID]; ok {
			return fmt.Errorf("account %s: %w", a.UserID, ErrDuplicate)
		}
		a.CreatedAt = r.now()
		d.accounts[a.UserID] = *a
		return nil
	})
}

func (r *memAccounts) GetByUserID(_ context.Context, userID string) (*models.Account, error) {
	var out models.Account
	err := r.do(func(d *memData) error {
		a, ok := d.accounts[userID]
		if !ok {
			return ErrNotFound
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *memAccounts) AddPoints(_ context.Context, userID string, delta int) error {
	return r.do(func(d *memData) error {
		a, ok := d.accounts[userID]
		if !ok {
			return fmt.Errorf("account %s: %w", userID, ErrNotFound)
		}
		a.Points += delta
		d.accounts[userID] = a
		return nil
	})
}

type memArticles struct {
	do  memAccess
	now func() time.Time
}

func (r *memArticles) Create(_ context.Context, a *models.Article) error {
	return r.do(func(d *memData) error {
		if _, ok := d.articles[a.ID]; ok {
			return fmt.Errorf("article %s: %w", a.ID, ErrDuplicate)
		}
		if _, ok := d.accounts[a.OwnerID]; !ok {
			return fmt.Errorf("article owner %s: %w", a.OwnerID, ErrNotFound)
		}
		a.CreatedAt = r.now()
		a.UpdatedAt = a.CreatedAt
		d.articles[a.ID] = *a
		return nil
	})
}

func (r *memArticles) GetByID(_ context.Context, id string) (*models.Article, error) {
	var out models.Article
	err := r.do(func(d *memData) error {
		a, ok := d.articles[id]
		if !ok {
			return ErrNotFound
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate совпадает с GetByID: транзакции и так сериализованы.
func (r *memArticles) GetForUpdate(ctx context.Context, id string) (*models.Article, error) {
	return r.GetByID(ctx, id)
}

func (r *memArticles) Update(_ context.Context, a *models.Article) error {
	return r.do(func(d *memData) error {
		cur, ok := d.articles[a.ID]
		if !ok {
			return ErrNotFound
		}
		cur.Title = a.Title
		cur.Contents = a.Contents
		cur.UpdatedAt = r.now()
		d.articles[a.ID] = cur
		a.UpdatedAt = cur.UpdatedAt
		return nil
	})
}

func (r *memArticles) Delete(_ context.Context, id string) (int64, error) {
	var n int64
	err := r.do(func(d *memData) error {
		if _, ok := d.articles[id]; ok {
			delete(d.articles, id)
			n = 1
		}
		return nil
	})
	return n, err
}

type memComments struct {
	do  memAccess
	now func() time.Time
}

func (r *memComments) Create(_ context.Context, c *models.Comment) error {
	return r.do(func(d *memData) error {
		if _, ok := d.comments[c.ID]; ok {
			return fmt.Errorf("comment %s: %w", c.ID, ErrDuplicate)
		}
		if _, ok := d.articles[c.ArticleID]; !ok {
			return fmt.Errorf("comment article %s: %w", c.ArticleID, ErrNotFound)
		}
		if _, ok := d.accounts[c.OwnerID]; !ok {
			return fmt.Errorf("comment owner %s: %w", c.OwnerID, ErrNotFound)
		}
		c.CreatedAt = r.now()
		d.comments[c.ID] = *c
		return nil
	})
}

func (r *memComments) GetByID(_ context.Context, id string) (*models.Comment, error) {
	var out models.Comment
	err := r.do(func(d *memData) error {
		c, ok := d.comments[id]
		if !ok {
			return ErrNotFound
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *memComments) ListByArticle(_ context.Context, articleID string) ([]*models.Comment, error) {
	list := []*models.Comment{}
	err := r.do(func(d *memData) error {
		for _, c := range d.comments {
			if c.ArticleID == articleID {
				c := c
				list = append(list, &c)
			}
		}
		return nil
	})
	return list, err
}

func (r *memComments) Delete(_ context.Context, id string) error {
	return r.do(func(d *memData) error {
		if _, ok := d.comments[id]; !ok {
			return fmt.Errorf("comment %s: %w", id, ErrNotFound)
		}
		delete(d.comments, id)
		return nil
	})
}

func (r *memComments) DeleteByArticle(_ context.Context, articleID string) (int64, error) {
	var n int64
	err := r.do(func(d *memData) error {
		for id, c := range d.comments {
			if c.ArticleID == articleID {
				delete(d.comments, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
