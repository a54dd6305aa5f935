package repository

import (
	"strings"
	"testing"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return gdb
}

// DryRunのINSERTでcolumnに渡る値を返す
func insertVar(t *testing.T, stmt *gorm.Statement, column string) interface{} {
	t.Helper()
	sql := stmt.SQL.String()
	open, closing := strings.Index(sql, "("), strings.Index(sql, ")")
	require.True(t, open >= 0 && closing > open, sql)

	for i, c := range strings.Split(sql[open+1:closing], ",") {
		if strings.Trim(c, "` ") == column {
			require.Less(t, i, len(stmt.Vars), sql)
			return stmt.Vars[i]
		}
	}
	t.Fatalf("column %s not in %s", column, sql)
	return nil
}

func TestInsertZone_KeepsInactiveFlag(t *testing.T) {
	gdb := dryRunDB(t)

	zone := model.ShippingZone{Name: "Upcountry", Cost: decimal.NewFromInt(500), IsActive: false}
	res := insertZone(gdb, &zone)
	require.NoError(t, res.Error)

	sql := res.Statement.SQL.String()
	assert.Contains(t, sql, "ON CONFLICT")
	assert.Contains(t, sql, "`is_active`=`excluded`.`is_active`")
	assert.Equal(t, false, insertVar(t, res.Statement, "is_active"))
	assert.Equal(t, false, insertVar(t, res.Statement, "is_default"))

	zone = model.ShippingZone{Name: "Nairobi", Cost: decimal.Zero, IsActive: true}
	res = insertZone(gdb, &zone)
	require.NoError(t, res.Error)
	assert.Equal(t, true, insertVar(t, res.Statement, "is_active"))
}

func TestCreate_KeepsInactiveFlags(t *testing.T) {
	gdb := dryRunDB(t)

	res := gdb.Create(&model.Product{Name: "Retired Throw", Price: decimal.NewFromInt(1200), IsActive: false})
	require.NoError(t, res.Error)
	assert.Equal(t, false, insertVar(t, res.Statement, "is_active"))

	res = gdb.Create(&model.ProductVariant{ProductID: 1, Size: "King", Price: decimal.NewFromInt(9500), IsActive: false})
	require.NoError(t, res.Error)
	assert.Equal(t, false, insertVar(t, res.Statement, "is_active"))

	res = gdb.Create(&model.User{Email: "off@example.com", PasswordHash: "x", Role: model.RoleUser, IsActive: false})
	require.NoError(t, res.Error)
	assert.Equal(t, false, insertVar(t, res.Statement, "is_active"))
}
