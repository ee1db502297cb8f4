// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package spinner

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"bimexport/app/core"
	"bimexport/app/logging"
)

// SpinWorkers runs the export workers until the process is asked to terminate.
// Shutdown waits for in-flight jobs, a job is never abandoned halfway.
func SpinWorkers(numberWorkers int) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	for i := 0; i < numberWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			core.ProcessJobs(ctx)
		}()
	}
	logging.Logger.Infof("%v workers ready", numberWorkers)

	<-ctx.Done()
	logging.Logger.Infof("quiting...")
	wg.Wait()
	logging.Logger.Infof("exit")
}
