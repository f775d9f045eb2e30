// Package memory implementa los repositorios de dominio en memoria.
// Útil para desarrollo y testing; no sobrevive reinicios.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dropDatabas3/consentd/internal/domain/repository"
)

// Store guarda todo en maps protegidos por un RWMutex.
// Los métodos Add*/Grant* son helpers de seeding para dev/tests.
type Store struct {
	mu sync.RWMutex

	resources         map[string]repository.Resource          // por ID
	scopes            map[string]repository.Scope             // por ID
	orgScopes         map[string]repository.OrganizationScope // por ID
	organizations     map[string]repository.Organization
	users             map[string]repository.User
	applications      map[string]repository.Application
	signInExperiences map[string]repository.SignInExperience // por applicationID

	grants map[string]repository.OrganizationGrant // por ID

	memberships      map[string]map[string]bool // userID -> orgID
	userScopes       map[string]map[string]bool // userID -> scopeID (directos)
	orgUserScopes    map[string]map[string]bool // orgID+"/"+userID -> scopeID (vía roles)
	orgUserOrgScopes map[string]map[string]bool // orgID+"/"+userID -> organizationScopeID
}

// New crea un Store vacío.
func New() *Store {
	return &Store{
		resources:         make(map[string]repository.Resource),
		scopes:            make(map[string]repository.Scope),
		orgScopes:         make(map[string]repository.OrganizationScope),
		organizations:     make(map[string]repository.Organization),
		users:             make(map[string]repository.User),
		applications:      make(map[string]repository.Application),
		signInExperiences: make(map[string]repository.SignInExperience),
		grants:            make(map[string]repository.OrganizationGrant),
		memberships:       make(map[string]map[string]bool),
		userScopes:        make(map[string]map[string]bool),
		orgUserScopes:     make(map[string]map[string]bool),
		orgUserOrgScopes:  make(map[string]map[string]bool),
	}
}

// ─── Seeding helpers ───

func (s *Store) AddResource(r repository.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[r.ID] = r
}

func (s *Store) AddScope(sc repository.Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scopes[sc.ID] = sc
}

func (s *Store) AddOrganizationScope(sc repository.OrganizationScope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgScopes[sc.ID] = sc
}

func (s *Store) AddOrganization(o repository.Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.organizations[o.ID] = o
}

func (s *Store) AddUser(u repository.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *Store) AddApplication(a repository.Application) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications[a.ID] = a
}

func (s *Store) SetSignInExperience(sie repository.SignInExperience) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signInExperiences[sie.ApplicationID] = sie
}

func (s *Store) AddMembership(userID, organizationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.memberships[userID] == nil {
		s.memberships[userID] = make(map[string]bool)
	}
	s.memberships[userID][organizationID] = true
}

// GrantUserScope otorga un scope de resource directo (personal) al usuario.
func (s *Store) GrantUserScope(userID, scopeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userScopes[userID] == nil {
		s.userScopes[userID] = make(map[string]bool)
	}
	s.userScopes[userID][scopeID] = true
}

// GrantOrganizationUserScope otorga un scope de resource al usuario a través
// de su rol en la organización.
func (s *Store) GrantOrganizationUserScope(organizationID, userID, scopeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := organizationID + "/" + userID
	if s.orgUserScopes[k] == nil {
		s.orgUserScopes[k] = make(map[string]bool)
	}
	s.orgUserScopes[k][scopeID] = true
}

// GrantOrganizationUserOrganizationScope otorga un organization scope al
// usuario a través de su rol en la organización.
func (s *Store) GrantOrganizationUserOrganizationScope(organizationID, userID, organizationScopeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := organizationID + "/" + userID
	if s.orgUserOrgScopes[k] == nil {
		s.orgUserOrgScopes[k] = make(map[string]bool)
	}
	s.orgUserOrgScopes[k][organizationScopeID] = true
}

// ─── Queries ───

func (s *Store) Resources() repository.ResourceRepository { return &resourceView{s} }
func (s *Store) Scopes() repository.ScopeRepository       { return &scopeView{s} }
func (s *Store) OrganizationScopes() repository.OrganizationScopeRepository {
	return &organizationScopeView{s}
}
func (s *Store) Organizations() repository.OrganizationRepository { return &organizationView{s} }
func (s *Store) Users() repository.UserRepository                 { return &userView{s} }
func (s *Store) Applications() repository.ApplicationRepository   { return &applicationView{s} }
func (s *Store) SignInExperiences() repository.SignInExperienceRepository {
	return &signInExperienceView{s}
}
func (s *Store) Grants() repository.GrantRepository { return &grantView{s} }

func (s *Store) Ping(_ context.Context) error { return nil }
func (s *Store) Close() error                 { return nil }

// ─── Views por entidad ───

type resourceView struct{ s *Store }

func (v *resourceView) GetByIndicator(_ context.Context, indicator string) (*repository.Resource, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	for _, r := range v.s.resources {
		if r.Indicator == indicator {
			out := r
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (v *resourceView) GetByID(_ context.Context, id string) (*repository.Resource, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	if r, ok := v.s.resources[id]; ok {
		out := r
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

func (v *resourceView) List(_ context.Context) ([]repository.Resource, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	out := make([]repository.Resource, 0, len(v.s.resources))
	for _, r := range v.s.resources {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Indicator < out[j].Indicator })
	return out, nil
}

type scopeView struct{ s *Store }

func (v *scopeView) GetByNameAndResource(_ context.Context, name, resourceID string) (*repository.Scope, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	for _, sc := range v.s.scopes {
		if sc.Name == name && sc.ResourceID == resourceID {
			out := sc
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (v *scopeView) ListByResource(_ context.Context, resourceID string) ([]repository.Scope, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []repository.Scope
	for _, sc := range v.s.scopes {
		if sc.ResourceID == resourceID {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (v *scopeView) ListUserScopeNames(_ context.Context, resourceID, userID string) ([]string, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []string
	for scopeID := range v.s.userScopes[userID] {
		if sc, ok := v.s.scopes[scopeID]; ok && sc.ResourceID == resourceID {
			out = append(out, sc.Name)
		}
	}
	sort.Strings(out)
	return out, nil
}

type organizationScopeView struct{ s *Store }

func (v *organizationScopeView) GetByName(_ context.Context, name string) (*repository.OrganizationScope, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	for _, sc := range v.s.orgScopes {
		if sc.Name == name {
			out := sc
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (v *organizationScopeView) List(_ context.Context) ([]repository.OrganizationScope, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	out := make([]repository.OrganizationScope, 0, len(v.s.orgScopes))
	for _, sc := range v.s.orgScopes {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (v *organizationScopeView) ListUserScopeNames(_ context.Context, userID, organizationID string) ([]string, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	seen := make(map[string]bool)
	for key, ids := range v.s.orgUserOrgScopes {
		orgID, uid, ok := splitKey(key)
		if !ok || uid != userID {
			continue
		}
		if organizationID != "" && orgID != organizationID {
			continue
		}
		for id := range ids {
			if sc, ok := v.s.orgScopes[id]; ok {
				seen[sc.Name] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

type organizationView struct{ s *Store }

func (v *organizationView) GetByID(_ context.Context, id string) (*repository.Organization, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	if o, ok := v.s.organizations[id]; ok {
		out := o
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

func (v *organizationView) ListByUser(_ context.Context, userID string) ([]repository.Organization, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []repository.Organization
	for orgID := range v.s.memberships[userID] {
		if o, ok := v.s.organizations[orgID]; ok {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (v *organizationView) FilterUserMemberships(_ context.Context, userID string, organizationIDs []string) ([]string, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []string
	for _, id := range organizationIDs {
		if v.s.memberships[userID][id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (v *organizationView) ListUserResourceScopeNames(_ context.Context, organizationID, userID, resourceID string) ([]string, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []string
	for scopeID := range v.s.orgUserScopes[organizationID+"/"+userID] {
		if sc, ok := v.s.scopes[scopeID]; ok && sc.ResourceID == resourceID {
			out = append(out, sc.Name)
		}
	}
	sort.Strings(out)
	return out, nil
}

type userView struct{ s *Store }

func (v *userView) GetByID(_ context.Context, id string) (*repository.User, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	if u, ok := v.s.users[id]; ok {
		out := u
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

type applicationView struct{ s *Store }

func (v *applicationView) GetByID(_ context.Context, id string) (*repository.Application, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	if a, ok := v.s.applications[id]; ok {
		out := a
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

type signInExperienceView struct{ s *Store }

func (v *signInExperienceView) GetByApplication(_ context.Context, applicationID string) (*repository.SignInExperience, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	if sie, ok := v.s.signInExperiences[applicationID]; ok {
		out := sie
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

type grantView struct{ s *Store }

func (v *grantView) InsertBatch(_ context.Context, grants []repository.OrganizationGrant) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, g := range grants {
		if v.hasTupleLocked(g) {
			continue // idempotente
		}
		v.s.grants[g.ID] = g
	}
	return nil
}

func (v *grantView) hasTupleLocked(g repository.OrganizationGrant) bool {
	for _, existing := range v.s.grants {
		if existing.ApplicationID == g.ApplicationID &&
			existing.UserID == g.UserID &&
			existing.OrganizationID == g.OrganizationID {
			return true
		}
	}
	return false
}

func (v *grantView) ListByUser(_ context.Context, userID string) ([]repository.OrganizationGrant, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []repository.OrganizationGrant
	for _, g := range v.s.grants {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	sortGrants(out)
	return out, nil
}

func (v *grantView) ListByApplication(_ context.Context, applicationID string) ([]repository.OrganizationGrant, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []repository.OrganizationGrant
	for _, g := range v.s.grants {
		if g.ApplicationID == applicationID {
			out = append(out, g)
		}
	}
	sortGrants(out)
	return out, nil
}

func (v *grantView) Delete(_ context.Context, id string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.grants[id]; !ok {
		return repository.ErrNotFound
	}
	delete(v.s.grants, id)
	return nil
}

func sortGrants(gs []repository.OrganizationGrant) {
	sort.Slice(gs, func(i, j int) bool {
		if gs[i].GrantedAt.Equal(gs[j].GrantedAt) {
			return gs[i].ID < gs[j].ID
		}
		return gs[i].GrantedAt.After(gs[j].GrantedAt)
	})
}

func splitKey(key string) (orgID, userID string, ok bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == '/' {
			return key[:i], key[i+1:], true
		}
	}
	return "", "", false
}
