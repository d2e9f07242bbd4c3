// Package mocks provides mock implementations for testing the console's
// repository interfaces.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks.
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockProfileRepository(ctrl)
//	mockRepo.EXPECT().GetByID(gomock.Any(), "u1").Return(profile, nil)
package mocks

// Generate mock for ProfileRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=profile_repository_mock.go github.com/loomhq/loom-admin/internal/core ProfileRepository

// Generate mock for FlagRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=flag_repository_mock.go github.com/loomhq/loom-admin/internal/core FlagRepository

// Generate mock for FlagRuleRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=flag_rule_repository_mock.go github.com/loomhq/loom-admin/internal/core FlagRuleRepository
