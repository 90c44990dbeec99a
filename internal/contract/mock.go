package contract

import (
	"github.com/huangsam/gridthreat/schema"
	"github.com/stretchr/testify/mock"
)

// --- MockStructure Implementation ---

// MockStructure is a mock implementation of Structure for testing.
type MockStructure struct {
	mock.Mock
}

var _ Structure = &MockStructure{} // Compile-time check

// ID implements the Structure interface.
func (m *MockStructure) ID() schema.StructureID {
	ret := m.Called()
	id, _ := ret.Get(0).(schema.StructureID)
	return id
}

// Name implements the Structure interface.
func (m *MockStructure) Name() string {
	return m.Called().String(0)
}

// SizeClass implements the Structure interface.
func (m *MockStructure) SizeClass() schema.SizeClass {
	ret := m.Called()
	size, _ := ret.Get(0).(schema.SizeClass)
	return size
}

// IsStatic implements the Structure interface.
func (m *MockStructure) IsStatic() bool {
	return m.Called().Bool(0)
}

// BoundingBox implements the Structure interface.
func (m *MockStructure) BoundingBox() schema.Box {
	ret := m.Called()
	box, _ := ret.Get(0).(schema.Box)
	return box
}

// CubeExists implements the Structure interface.
func (m *MockStructure) CubeExists(c schema.Cell) bool {
	return m.Called(c).Bool(0)
}

// DeviceAt implements the Structure interface.
func (m *MockStructure) DeviceAt(c schema.Cell) (schema.BlockID, bool) {
	ret := m.Called(c)
	id, _ := ret.Get(0).(schema.BlockID)
	return id, ret.Bool(1)
}

// --- MockHost Implementation ---

// MockHost is a mock implementation of Host for testing.
type MockHost struct {
	mock.Mock
}

var _ Host = &MockHost{} // Compile-time check

// Self implements the Host interface.
func (m *MockHost) Self() schema.Block {
	ret := m.Called()
	b, _ := ret.Get(0).(schema.Block)
	return b
}

// Blocks implements the Host interface.
func (m *MockHost) Blocks() []schema.Block {
	ret := m.Called()
	blocks, _ := ret.Get(0).([]schema.Block)
	return blocks
}

// Structure implements the Host interface.
func (m *MockHost) Structure(id schema.StructureID) (Structure, bool) {
	ret := m.Called(id)
	s, _ := ret.Get(0).(Structure)
	return s, ret.Bool(1)
}

// MockModHost is a MockHost that also exposes the weapon mod.
type MockModHost struct {
	MockHost
}

var _ WeaponModProvider = &MockModHost{} // Compile-time check

// WeaponMod implements the WeaponModProvider interface.
func (m *MockModHost) WeaponMod() (WeaponMod, error) {
	ret := m.Called()
	wm, _ := ret.Get(0).(WeaponMod)
	return wm, ret.Error(1)
}

// --- MockWeaponMod Implementation ---

// MockWeaponMod is a mock implementation of WeaponMod for testing.
type MockWeaponMod struct {
	mock.Mock
}

var _ WeaponMod = &MockWeaponMod{} // Compile-time check

// StaticLaunchers implements the WeaponMod interface.
func (m *MockWeaponMod) StaticLaunchers() []schema.DefinitionID {
	ret := m.Called()
	defs, _ := ret.Get(0).([]schema.DefinitionID)
	return defs
}

// Turrets implements the WeaponMod interface.
func (m *MockWeaponMod) Turrets() []schema.DefinitionID {
	ret := m.Called()
	defs, _ := ret.Get(0).([]schema.DefinitionID)
	return defs
}

// --- MockSnapshotStore Implementation ---

// MockSnapshotStore is a mock implementation of SnapshotStore for testing.
type MockSnapshotStore struct {
	mock.Mock
}

var _ SnapshotStore = &MockSnapshotStore{} // Compile-time check

// Save implements the SnapshotStore interface.
func (m *MockSnapshotStore) Save(name string, snap schema.Snapshot) error {
	return m.Called(name, snap).Error(0)
}

// Load implements the SnapshotStore interface.
func (m *MockSnapshotStore) Load(name string) (schema.Snapshot, error) {
	ret := m.Called(name)
	snap, _ := ret.Get(0).(schema.Snapshot)
	return snap, ret.Error(1)
}

// List implements the SnapshotStore interface.
func (m *MockSnapshotStore) List() ([]schema.SnapshotInfo, error) {
	ret := m.Called()
	infos, _ := ret.Get(0).([]schema.SnapshotInfo)
	return infos, ret.Error(1)
}

// Delete implements the SnapshotStore interface.
func (m *MockSnapshotStore) Delete(name string) error {
	return m.Called(name).Error(0)
}

// Clear implements the SnapshotStore interface.
func (m *MockSnapshotStore) Clear() error {
	return m.Called().Error(0)
}

// GetStatus implements the SnapshotStore interface.
func (m *MockSnapshotStore) GetStatus() (schema.StoreStatus, error) {
	ret := m.Called()
	status, _ := ret.Get(0).(schema.StoreStatus)
	return status, ret.Error(1)
}

// Close implements the SnapshotStore interface.
func (m *MockSnapshotStore) Close() error {
	return m.Called().Error(0)
}
