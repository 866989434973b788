package input

import (
	"context"

	"admin-e2e/internal/domain/entity"
)

type AdminActions interface {
	Login(ctx context.Context, creds entity.Credentials) error
	NavigateToTab(ctx context.Context, tab string) error
	CreateTool(ctx context.Context, tool entity.ToolDescriptor) error
	ToolByName(name string) entity.Locator
	DeleteTool(ctx context.Context, name string) error
}

type ToolsWorkflow interface {
	Setup(ctx context.Context) error
	ExecuteTool(ctx context.Context, name string, params entity.Parameters) (string, error)
}
