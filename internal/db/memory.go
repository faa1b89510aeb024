package db

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jumpca/gridsignage/internal/model"
)

// memStore is an in-memory Store used by the test suites. It mirrors the
// Postgres implementation's semantics, including the uniqueness rules the
// registry retries against, so logic and handler tests run without a
// database.
type memStore struct {
	mu sync.RWMutex

	nextUserID int
	users      map[int]model.User

	nextDesignID int
	designs      map[int]model.ScreenDesign

	playlists  map[uuid.UUID]model.Playlist
	nextItemID int
	items      map[int]model.PlaylistItem

	devices map[uuid.UUID]model.Device
}

var _ Store = (*memStore)(nil)

func NewMemoryStore() Store {
	return &memStore{
		nextUserID:   1,
		users:        make(map[int]model.User),
		nextDesignID: 1,
		designs:      make(map[int]model.ScreenDesign),
		playlists:    make(map[uuid.UUID]model.Playlist),
		nextItemID:   1,
		items:        make(map[int]model.PlaylistItem),
		devices:      make(map[uuid.UUID]model.Device),
	}
}

// users

func (s *memStore) CreateUser(email, hashedPassword string, name *string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return 0, fmt.Errorf("email already registered: %w", ErrConflict)
		}
	}
	id := s.nextUserID
	s.nextUserID++
	now := time.Now()
	s.users[id] = model.User{
		ID: id, Email: email, HashedPassword: hashedPassword, Name: name,
		CreatedAt: now, UpdatedAt: now,
	}
	return id, nil
}

func (s *memStore) GetUserByEmail(email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memStore) GetUserByID(id int) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := u
	return &out, nil
}

func (s *memStore) UpdateUserProfile(id int, email string, name *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Email = email
	u.Name = name
	u.UpdatedAt = time.Now()
	s.users[id] = u
	return nil
}

// screen designs

func (s *memStore) CreateScreenDesign(
	name, slug, description, htmlCode, cssCode, jsCode, notes string,
) (model.ScreenDesign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.designs {
		if d.Slug == slug {
			return model.ScreenDesign{}, fmt.Errorf("slug %q taken: %w", slug, ErrConflict)
		}
	}
	id := s.nextDesignID
	s.nextDesignID++
	now := time.Now()
	d := model.ScreenDesign{
		ID: id, Name: name, Slug: slug, Description: description,
		HTMLCode: htmlCode, CSSCode: cssCode, JSCode: jsCode, Notes: notes,
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	s.designs[id] = d
	return d, nil
}

func (s *memStore) GetScreenDesignByID(id int) (model.ScreenDesign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.designs[id]
	if !ok {
		return model.ScreenDesign{}, ErrNotFound
	}
	return d, nil
}

func (s *memStore) GetActiveScreenDesignBySlug(slug string) (model.ScreenDesign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.designs {
		if d.Slug == slug && d.IsActive {
			return d, nil
		}
	}
	return model.ScreenDesign{}, ErrNotFound
}

func (s *memStore) ListScreenDesigns(isActive *bool, search string) ([]model.ScreenDesign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.ScreenDesign
	needle := strings.ToLower(search)
	for _, d := range s.designs {
		if isActive != nil && d.IsActive != *isActive {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(d.Name), needle) &&
			!strings.Contains(strings.ToLower(d.Slug), needle) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *memStore) UpdateScreenDesign(
	id int,
	name, description, htmlCode, cssCode, jsCode, notes *string,
	isActive *bool,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.designs[id]
	if !ok {
		return ErrNotFound
	}
	if name != nil {
		d.Name = *name
	}
	if description != nil {
		d.Description = *description
	}
	if htmlCode != nil {
		d.HTMLCode = *htmlCode
	}
	if cssCode != nil {
		d.CSSCode = *cssCode
	}
	if jsCode != nil {
		d.JSCode = *jsCode
	}
	if notes != nil {
		d.Notes = *notes
	}
	if isActive != nil {
		d.IsActive = *isActive
	}
	d.UpdatedAt = time.Now()
	s.designs[id] = d
	return nil
}

func (s *memStore) DeleteScreenDesign(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.designs[id]; !ok {
		return ErrNotFound
	}
	for _, it := range s.items {
		if it.ScreenDesignID == id {
			return fmt.Errorf("design %d still referenced: %w", id, ErrConflict)
		}
	}
	for _, dev := range s.devices {
		if dev.AssignedScreenID != nil && *dev.AssignedScreenID == id {
			return fmt.Errorf("design %d still referenced: %w", id, ErrConflict)
		}
	}
	delete(s.designs, id)
	return nil
}

// playlists

func (s *memStore) CreatePlaylist(name, slug string) (model.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.playlists {
		if p.Name == name || p.Slug == slug {
			return model.Playlist{}, fmt.Errorf("playlist name or slug taken: %w", ErrConflict)
		}
	}
	now := time.Now()
	p := model.Playlist{
		ID: uuid.New(), Name: name, Slug: slug, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	s.playlists[p.ID] = p
	return p, nil
}

func (s *memStore) GetPlaylistByID(id uuid.UUID) (model.Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.playlists[id]
	if !ok {
		return model.Playlist{}, ErrNotFound
	}
	p.Items = s.itemsOf(id)
	return p, nil
}

func (s *memStore) ListPlaylists() ([]model.Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Playlist
	for _, p := range s.playlists {
		p.Items = s.itemsOf(p.ID)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// itemsOf expects the lock held.
func (s *memStore) itemsOf(playlistID uuid.UUID) []model.PlaylistItem {
	var items []model.PlaylistItem
	for _, it := range s.items {
		if it.PlaylistID == playlistID {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	return items
}

func (s *memStore) UpdatePlaylist(id uuid.UUID, name *string, isActive *bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.playlists[id]
	if !ok {
		return ErrNotFound
	}
	if name != nil {
		for _, other := range s.playlists {
			if other.ID != id && other.Name == *name {
				return fmt.Errorf("playlist name taken: %w", ErrConflict)
			}
		}
		p.Name = *name
	}
	if isActive != nil {
		p.IsActive = *isActive
	}
	p.UpdatedAt = time.Now()
	s.playlists[id] = p
	return nil
}

func (s *memStore) DeletePlaylist(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.playlists[id]; !ok {
		return ErrNotFound
	}
	delete(s.playlists, id)
	for itemID, it := range s.items {
		if it.PlaylistID == id {
			delete(s.items, itemID)
		}
	}
	for devID, dev := range s.devices {
		if dev.AssignedPlaylistID != nil && *dev.AssignedPlaylistID == id {
			dev.AssignedPlaylistID = nil
			s.devices[devID] = dev
		}
	}
	return nil
}

func (s *memStore) AddPlaylistItem(
	playlistID uuid.UUID, screenDesignID, position, durationSeconds int,
) (model.PlaylistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if durationSeconds <= 0 {
		return model.PlaylistItem{}, fmt.Errorf("duration_seconds must be positive: %w", ErrInvalid)
	}
	if position < 0 {
		return model.PlaylistItem{}, fmt.Errorf("position must not be negative: %w", ErrInvalid)
	}
	if _, ok := s.playlists[playlistID]; !ok {
		return model.PlaylistItem{}, ErrNotFound
	}
	if _, ok := s.designs[screenDesignID]; !ok {
		return model.PlaylistItem{}, fmt.Errorf("playlist or design missing: %w", ErrNotFound)
	}
	for _, it := range s.items {
		if it.PlaylistID == playlistID && it.Position == position {
			return model.PlaylistItem{}, fmt.Errorf("position %d occupied: %w", position, ErrConflict)
		}
	}
	id := s.nextItemID
	s.nextItemID++
	it := model.PlaylistItem{
		ID: id, PlaylistID: playlistID, ScreenDesignID: screenDesignID,
		Position: position, DurationSeconds: durationSeconds, CreatedAt: time.Now(),
	}
	s.items[id] = it
	return it, nil
}

func (s *memStore) UpdatePlaylistItem(
	playlistID uuid.UUID, itemID int, position, durationSeconds *int,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if durationSeconds != nil && *durationSeconds <= 0 {
		return fmt.Errorf("duration_seconds must be positive: %w", ErrInvalid)
	}
	if position != nil && *position < 0 {
		return fmt.Errorf("position must not be negative: %w", ErrInvalid)
	}
	it, ok := s.items[itemID]
	if !ok || it.PlaylistID != playlistID {
		return ErrNotFound
	}
	if position != nil {
		for _, other := range s.items {
			if other.ID != itemID && other.PlaylistID == playlistID && other.Position == *position {
				return fmt.Errorf("position occupied: %w", ErrConflict)
			}
		}
		it.Position = *position
	}
	if durationSeconds != nil {
		it.DurationSeconds = *durationSeconds
	}
	s.items[itemID] = it
	return nil
}

func (s *memStore) RemovePlaylistItem(playlistID uuid.UUID, itemID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[itemID]
	if !ok || it.PlaylistID != playlistID {
		return ErrNotFound
	}
	delete(s.items, itemID)
	return nil
}

func (s *memStore) ReorderPlaylistItems(playlistID uuid.UUID, itemIDs []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.playlists[playlistID]; !ok {
		return ErrNotFound
	}
	var existing []int
	for _, it := range s.items {
		if it.PlaylistID == playlistID {
			existing = append(existing, it.ID)
		}
	}
	if !sameIDSet(existing, itemIDs) {
		return fmt.Errorf("item ids do not match playlist contents: %w", ErrInvalid)
	}
	for idx, itemID := range itemIDs {
		it := s.items[itemID]
		it.Position = idx
		s.items[itemID] = it
	}
	p := s.playlists[playlistID]
	p.UpdatedAt = time.Now()
	s.playlists[playlistID] = p
	return nil
}

func (s *memStore) ResolvePlaylistItems(playlistID uuid.UUID) ([]model.ResolvedPlaylistItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.ResolvedPlaylistItem
	for _, it := range s.itemsOf(playlistID) {
		d, ok := s.designs[it.ScreenDesignID]
		if !ok || !d.IsActive {
			continue
		}
		out = append(out, model.ResolvedPlaylistItem{
			ScreenDesignID:  d.ID,
			Name:            d.Name,
			Slug:            d.Slug,
			Position:        it.Position,
			DurationSeconds: it.DurationSeconds,
		})
	}
	return out, nil
}

// devices

func (s *memStore) CreateDevice(name, registrationCode string) (model.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.devices {
		if d.RegistrationCode == registrationCode {
			return model.Device{}, fmt.Errorf("registration code collision: %w", ErrConflict)
		}
	}
	now := time.Now()
	d := model.Device{
		ID: uuid.New(), Name: name, RegistrationCode: registrationCode,
		LastSeen: now, CreatedAt: now, UpdatedAt: now,
	}
	s.devices[d.ID] = d
	return d, nil
}

func (s *memStore) GetDeviceByID(id uuid.UUID) (model.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.devices[id]
	if !ok {
		return model.Device{}, ErrNotFound
	}
	return d, nil
}

func (s *memStore) GetDeviceByCode(registrationCode string) (model.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.devices {
		if d.RegistrationCode == registrationCode {
			return d, nil
		}
	}
	return model.Device{}, ErrNotFound
}

func (s *memStore) ListDevices() ([]model.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Device
	for _, d := range s.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastSeen.After(out[j].LastSeen) })
	return out, nil
}

func (s *memStore) UpdateDevice(id uuid.UUID, name, location, notes *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[id]
	if !ok {
		return ErrNotFound
	}
	if name != nil {
		d.Name = *name
	}
	if location != nil {
		d.Location = *location
	}
	if notes != nil {
		d.Notes = *notes
	}
	d.UpdatedAt = time.Now()
	s.devices[id] = d
	return nil
}

func (s *memStore) SetDeviceRegistered(id uuid.UUID, registered bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[id]
	if !ok {
		return ErrNotFound
	}
	d.Registered = registered
	d.UpdatedAt = time.Now()
	s.devices[id] = d
	return nil
}

func (s *memStore) AssignScreenToDevice(id uuid.UUID, screenDesignID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[id]
	if !ok {
		return ErrNotFound
	}
	if _, ok := s.designs[screenDesignID]; !ok {
		return fmt.Errorf("screen design %d missing: %w", screenDesignID, ErrNotFound)
	}
	d.AssignedScreenID = &screenDesignID
	d.AssignedPlaylistID = nil
	d.UpdatedAt = time.Now()
	s.devices[id] = d
	return nil
}

func (s *memStore) AssignPlaylistToDevice(id uuid.UUID, playlistID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[id]
	if !ok {
		return ErrNotFound
	}
	if _, ok := s.playlists[playlistID]; !ok {
		return fmt.Errorf("playlist %s missing: %w", playlistID, ErrNotFound)
	}
	d.AssignedPlaylistID = &playlistID
	d.AssignedScreenID = nil
	d.UpdatedAt = time.Now()
	s.devices[id] = d
	return nil
}

func (s *memStore) UnassignDevice(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[id]
	if !ok {
		return ErrNotFound
	}
	d.AssignedPlaylistID = nil
	d.AssignedScreenID = nil
	d.UpdatedAt = time.Now()
	s.devices[id] = d
	return nil
}

func (s *memStore) TouchDevice(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[id]
	if !ok {
		return ErrNotFound
	}
	d.LastSeen = time.Now()
	s.devices[id] = d
	return nil
}

func (s *memStore) DeleteDevice(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.devices[id]; !ok {
		return ErrNotFound
	}
	delete(s.devices, id)
	return nil
}
