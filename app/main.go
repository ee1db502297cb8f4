// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package main

import (
	"fmt"
	"os"
	"strconv"

	"bimexport/app/logging"
	"bimexport/app/server"
	"bimexport/app/workers/spinner"
)

func main() {
	numberWorkers := 0
	var err error
	if len(os.Args) > 1 {
		numberWorkers, err = strconv.Atoi(os.Args[1])
		if err != nil {
			panic(fmt.Errorf("failed to parse number of workers from %v: %v", os.Args[1], err))
		}
	}
	if numberWorkers > 0 {
		logging.Logger.Infof("number workers: %v", numberWorkers)
		go server.Start()
		spinner.SpinWorkers(numberWorkers)
	} else {
		logging.Logger.Infof("http server only")
		server.Start()
	}
}
