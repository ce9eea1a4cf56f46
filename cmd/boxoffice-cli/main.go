package main

import (
	"context"

	"boxoffice-backend/cmd/boxoffice-cli/commands"
	"boxoffice-backend/lib/serviceutil"
	"boxoffice-backend/lib/telemetry"

	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()
	telemetry.SetupFromEnv(context.Background(), "boxoffice-cli")
	telemetry.InitSlog(true)
	telemetry.InstrumentPerfStats(context.Background())

	// Ctrl+C stops submitting new fetches, completed work stays
	// checkpointed
	commands.ExecuteContext(serviceutil.SignalContext())
}
