package database

import (
	"testing"

	"github.com/sangkips/colmado-pos/internal/config"
	"github.com/sangkips/colmado-pos/internal/domain/entity"
	"github.com/sangkips/colmado-pos/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDefaultDataIsRepeatable(t *testing.T) {
	db, err := NewSQLiteDB("file:seed?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	admin := config.AdminConfig{Name: "Dueño", Email: "admin@colmado.do", Password: "supersecreto"}
	require.NoError(t, SeedDefaultData(db, admin))
	require.NoError(t, SeedDefaultData(db, admin))

	var roles []entity.Role
	require.NoError(t, db.Preload("Permissions").Order("name").Find(&roles).Error)
	require.Len(t, roles, 2)
	assert.Equal(t, entity.RoleAdmin, roles[0].Name)
	assert.Len(t, roles[0].Permissions, len(entity.DefaultRolePermissions()[entity.RoleAdmin]))

	var users []entity.User
	require.NoError(t, db.Preload("Roles").Find(&users).Error)
	require.Len(t, users, 1)
	assert.True(t, users[0].Active)
	assert.True(t, utils.CheckPasswordHash("supersecreto", users[0].Password))
	require.Len(t, users[0].Roles, 1)
	assert.Equal(t, entity.RoleAdmin, users[0].Roles[0].Name)
}

func TestSeedWithoutAdminPassword(t *testing.T) {
	db, err := NewSQLiteDB("file:seed_nopass?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	require.NoError(t, SeedDefaultData(db, config.AdminConfig{Email: "admin@colmado.do"}))

	var count int64
	require.NoError(t, db.Model(&entity.User{}).Count(&count).Error)
	assert.Zero(t, count)
}
