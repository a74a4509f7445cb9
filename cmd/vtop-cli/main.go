package main

import (
	"context"
	"vtop-backend/cmd/vtop-cli/commands"
	"vtop-backend/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "vtop-cli")
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}
