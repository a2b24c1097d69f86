package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStoreProvider keeps every engine account in process memory. It backs
// tests and single-node deployments that have no database configured.
type MemoryStoreProvider struct {
	lifecycle *memorySingletonStore[Lifecycle]
	config    *memorySingletonStore[GlobalConfig]
	metadata  *memorySingletonStore[GlobalMetadata]
	metrics   *memorySingletonStore[Metrics]
	authority *MemoryAuthorityStore
	repos     *MemoryRepoStore
	forks     *MemoryForkStore
}

func NewMemoryStoreProvider() *MemoryStoreProvider {
	return &MemoryStoreProvider{
		lifecycle: &memorySingletonStore[Lifecycle]{name: "lifecycle"},
		config:    &memorySingletonStore[GlobalConfig]{name: "config"},
		metadata:  &memorySingletonStore[GlobalMetadata]{name: "metadata"},
		metrics:   &memorySingletonStore[Metrics]{name: "metrics"},
		authority: NewMemoryAuthorityStore(),
		repos:     NewMemoryRepoStore(),
		forks:     NewMemoryForkStore(),
	}
}

func (p *MemoryStoreProvider) LifecycleStore() LifecycleStore { return p.lifecycle }
func (p *MemoryStoreProvider) ConfigStore() ConfigStore       { return p.config }
func (p *MemoryStoreProvider) MetadataStore() MetadataStore   { return p.metadata }
func (p *MemoryStoreProvider) MetricsStore() MetricsStore     { return p.metrics }
func (p *MemoryStoreProvider) AuthorityStore() AuthorityStore { return p.authority }
func (p *MemoryStoreProvider) RepoStore() RepoStore           { return p.repos }
func (p *MemoryStoreProvider) ForkStore() ForkStore           { return p.forks }

var _ StoreProvider = (*MemoryStoreProvider)(nil)

type memorySingletonStore[T any] struct {
	mu    sync.Mutex
	name  string
	set   bool
	value T
}

func (s *memorySingletonStore[T]) Load(context.Context) (T, error) {
	var zero T
	if s == nil {
		return zero, fmt.Errorf("core: singleton store is not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, s.name)
	}
	return s.value, nil
}

func (s *memorySingletonStore[T]) Save(_ context.Context, value T) error {
	if s == nil {
		return fmt.Errorf("core: singleton store is not configured")
	}
	s.mu.Lock()
	s.value = value
	s.set = true
	s.mu.Unlock()
	return nil
}

type MemoryAuthorityStore struct {
	mu      sync.Mutex
	entries map[string]AccessEntry
}

func NewMemoryAuthorityStore() *MemoryAuthorityStore {
	return &MemoryAuthorityStore{entries: map[string]AccessEntry{}}
}

func authorityKey(identity string, scope Scope) string {
	return strings.TrimSpace(identity) + "\x00" + scope.String()
}

func (s *MemoryAuthorityStore) Get(_ context.Context, identity string, scope Scope) (AccessEntry, error) {
	if s == nil {
		return AccessEntry{}, fmt.Errorf("core: authority store is not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[authorityKey(identity, scope)]
	if !ok {
		return AccessEntry{}, fmt.Errorf("%w: access entry %s", ErrNotFound, strings.TrimSpace(identity))
	}
	return entry, nil
}

func (s *MemoryAuthorityStore) Save(_ context.Context, entry AccessEntry) error {
	if s == nil {
		return fmt.Errorf("core: authority store is not configured")
	}
	s.mu.Lock()
	s.entries[authorityKey(entry.Identity, entry.Scope)] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryAuthorityStore) ListByIdentity(_ context.Context, identity string) ([]AccessEntry, error) {
	if s == nil {
		return nil, fmt.Errorf("core: authority store is not configured")
	}
	identity = strings.TrimSpace(identity)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []AccessEntry
	for _, entry := range s.entries {
		if entry.Identity == identity {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Scope.String() < out[j].Scope.String()
	})
	return out, nil
}

var _ AuthorityStore = (*MemoryAuthorityStore)(nil)

type MemoryRepoStore struct {
	mu    sync.Mutex
	repos map[string]Repo
}

func NewMemoryRepoStore() *MemoryRepoStore {
	return &MemoryRepoStore{repos: map[string]Repo{}}
}

func (s *MemoryRepoStore) Get(_ context.Context, key string) (Repo, error) {
	if s == nil {
		return Repo{}, fmt.Errorf("core: repo store is not configured")
	}
	key = strings.TrimSpace(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	repo, ok := s.repos[key]
	if !ok {
		return Repo{}, fmt.Errorf("%w: repo %s", ErrNotFound, key)
	}
	return repo, nil
}

func (s *MemoryRepoStore) Save(_ context.Context, repo Repo) error {
	if s == nil {
		return fmt.Errorf("core: repo store is not configured")
	}
	s.mu.Lock()
	s.repos[repo.Key] = repo
	s.mu.Unlock()
	return nil
}

func (s *MemoryRepoStore) List(_ context.Context, owner string) ([]Repo, error) {
	if s == nil {
		return nil, fmt.Errorf("core: repo store is not configured")
	}
	owner = strings.TrimSpace(owner)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Repo
	for _, repo := range s.repos {
		if owner == "" || repo.Owner == owner {
			out = append(out, repo)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

var _ RepoStore = (*MemoryRepoStore)(nil)

type MemoryForkStore struct {
	mu    sync.Mutex
	forks map[string]Fork
}

func NewMemoryForkStore() *MemoryForkStore {
	return &MemoryForkStore{forks: map[string]Fork{}}
}

func (s *MemoryForkStore) Get(_ context.Context, key string) (Fork, error) {
	if s == nil {
		return Fork{}, fmt.Errorf("core: fork store is not configured")
	}
	key = strings.TrimSpace(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	fork, ok := s.forks[key]
	if !ok {
		return Fork{}, fmt.Errorf("%w: fork %s", ErrNotFound, key)
	}
	return fork, nil
}

func (s *MemoryForkStore) Save(_ context.Context, fork Fork) error {
	if s == nil {
		return fmt.Errorf("core: fork store is not configured")
	}
	s.mu.Lock()
	s.forks[fork.Key] = fork
	s.mu.Unlock()
	return nil
}

func (s *MemoryForkStore) ListByParent(_ context.Context, parentKey string) ([]Fork, error) {
	if s == nil {
		return nil, fmt.Errorf("core: fork store is not configured")
	}
	parentKey = strings.TrimSpace(parentKey)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Fork
	for _, fork := range s.forks {
		if parentKey == "" || fork.ParentKey == parentKey {
			out = append(out, fork)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

var _ ForkStore = (*MemoryForkStore)(nil)
