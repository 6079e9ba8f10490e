package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffective(t *testing.T) {
	tests := []struct {
		name      string
		rolePerms [][]string
		direct    []string
		want      []string
	}{
		{
			name:      "empty inputs",
			rolePerms: nil,
			direct:    nil,
			want:      []string{},
		},
		{
			name:      "roles only",
			rolePerms: [][]string{{CodeViewAppeals, CodeCreateAppeal}},
			direct:    nil,
			want:      []string{CodeCreateAppeal, CodeViewAppeals},
		},
		{
			name:      "direct only",
			rolePerms: nil,
			direct:    []string{CodeViewReports},
			want:      []string{CodeViewReports},
		},
		{
			name:      "duplicates across roles and direct collapse",
			rolePerms: [][]string{{CodeViewAppeals, CodeEditAppeal}, {CodeViewAppeals, CodeViewUsers}},
			direct:    []string{CodeEditAppeal, CodeViewAppeals},
			want:      []string{CodeEditAppeal, CodeViewAppeals, CodeViewUsers},
		},
		{
			name:      "result is sorted regardless of input order",
			rolePerms: [][]string{{CodeViewUsers, CodeCreateAppeal}},
			direct:    []string{CodeAssignAppeal},
			want:      []string{CodeAssignAppeal, CodeCreateAppeal, CodeViewUsers},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Effective(tt.rolePerms, tt.direct)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCan(t *testing.T) {
	effective := []string{CodeViewAppeals, CodeCreateAppeal}

	t.Run("member code passes", func(t *testing.T) {
		assert.True(t, Can(false, effective, CodeViewAppeals))
	})

	t.Run("missing code fails", func(t *testing.T) {
		assert.False(t, Can(false, effective, CodeDeleteAppeal))
	})

	t.Run("admin passes any code", func(t *testing.T) {
		assert.True(t, Can(true, nil, CodeDeleteAppeal))
	})

	t.Run("admin passes codes the registry has never seen", func(t *testing.T) {
		assert.True(t, Can(true, effective, "future_feature_toggle"))
		assert.False(t, Can(false, effective, "future_feature_toggle"))
	})

	t.Run("empty code only matches empty entry never present", func(t *testing.T) {
		assert.False(t, Can(false, effective, ""))
	})
}

func TestCanAny(t *testing.T) {
	effective := []string{CodeViewAppeals}

	t.Run("one of several matches", func(t *testing.T) {
		assert.True(t, CanAny(false, effective, CodeDeleteAppeal, CodeViewAppeals))
	})

	t.Run("none match", func(t *testing.T) {
		assert.False(t, CanAny(false, effective, CodeDeleteAppeal, CodeEditAppeal))
	})

	t.Run("empty code list fails for non-admin", func(t *testing.T) {
		assert.False(t, CanAny(false, effective))
	})

	t.Run("empty code list passes for admin", func(t *testing.T) {
		assert.True(t, CanAny(true, nil))
	})
}

func TestCategoryProtected(t *testing.T) {
	assert.True(t, CategoryAdmin.Protected())
	assert.True(t, CategoryUsers.Protected())
	assert.True(t, CategoryAudit.Protected())
	assert.False(t, CategoryAppeals.Protected())
	assert.False(t, CategoryCitizens.Protected())
	assert.False(t, CategoryReports.Protected())
}

func TestCanAssign(t *testing.T) {
	tests := []struct {
		name         string
		rank         int
		hasProtected bool
		want         bool
	}{
		{"super admin assigns protected", RankSuperAdmin, true, true},
		{"super admin assigns unprotected", RankSuperAdmin, false, true},
		{"admin assigns unprotected", RankAdmin, false, true},
		{"admin cannot assign protected", RankAdmin, true, false},
		{"rank one assigns nothing", RankUser, false, false},
		{"rank one cannot assign protected", RankUser, true, false},
		{"rank above super admin still passes", 4, true, true},
		{"zero rank assigns nothing", 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAssign(tt.rank, tt.hasProtected))
		})
	}
}

func TestHasProtected(t *testing.T) {
	unprotected := []*Permission{
		{Code: CodeViewAppeals, Category: CategoryAppeals},
		{Code: CodeViewReports, Category: CategoryReports},
	}
	assert.False(t, HasProtected(unprotected))

	mixed := append(unprotected, &Permission{Code: CodeViewUsers, Category: CategoryUsers})
	assert.True(t, HasProtected(mixed))

	assert.False(t, HasProtected(nil))
}

func TestAbility(t *testing.T) {
	code, ok := Ability("ViewAppeals")
	assert.True(t, ok)
	assert.Equal(t, CodeViewAppeals, code)

	_, ok = Ability("NoSuchAbility")
	assert.False(t, ok)
}
