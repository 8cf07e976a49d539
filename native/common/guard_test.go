package common

import (
	"errors"
	"testing"

	stakeerr "stakeplatform/core/errors"
)

type lockFlag bool

func (l lockFlag) IsLocked() bool { return bool(l) }

func TestGuard(t *testing.T) {
	cases := []struct {
		name   string
		view   LockView
		class  OperationClass
		expect error
	}{
		{"user action unlocked", lockFlag(false), ClassUserAction, nil},
		{"user action locked", lockFlag(true), ClassUserAction, stakeerr.ErrLockedOperation},
		{"asset config unlocked", lockFlag(false), ClassAssetConfig, stakeerr.ErrConfigRequiresLock},
		{"asset config locked", lockFlag(true), ClassAssetConfig, nil},
		{"parameter unlocked", lockFlag(false), ClassParameter, nil},
		{"parameter locked", lockFlag(true), ClassParameter, nil},
		{"nil view user action", nil, ClassUserAction, nil},
		{"nil view asset config", nil, ClassAssetConfig, stakeerr.ErrConfigRequiresLock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Guard(tc.view, tc.class)
			if !errors.Is(err, tc.expect) {
				t.Fatalf("expected %v, got %v", tc.expect, err)
			}
		})
	}
}

func TestOperationClassString(t *testing.T) {
	if ClassUserAction.String() != "user_action" || ClassAssetConfig.String() != "asset_config" || ClassParameter.String() != "parameter" {
		t.Fatalf("unexpected class names")
	}
	if OperationClass(99).String() != "unknown" {
		t.Fatalf("expected unknown for out of range class")
	}
}
