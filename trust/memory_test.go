package trust

import (
	"errors"
	"sync"

	"github.com/wansing/nexo/core"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]core.User
	err   error // returned by every call if set
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]core.User{}}
}

func (m *memUsers) CreateUser(u core.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[u.Username]; ok {
		return core.ErrUserExists
	}
	m.users[u.Username] = u
	return nil
}

func (m *memUsers) GetUserByName(username string) (*core.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memUsers) DeleteUser(username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.users, username)
	return nil
}

type memArticles struct {
	mu       sync.Mutex
	articles map[string]core.Article
}

func newMemArticles() *memArticles {
	return &memArticles{articles: map[string]core.Article{}}
}

func (m *memArticles) CreateArticle(a *core.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[a.FileName]; ok {
		return errors.New("article exists")
	}
	m.articles[a.FileName] = *a
	return nil
}

func (m *memArticles) GetArticleByFileName(fileName string) (*core.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[fileName]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *memArticles) DeleteArticle(fileName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.articles, fileName)
	return nil
}
