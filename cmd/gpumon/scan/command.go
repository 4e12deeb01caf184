// Package scan implements the "scan" command.
package scan

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/damionirving/gpumon-aws/pkg/host"
	"github.com/damionirving/gpumon-aws/pkg/log"
	pkgnvml "github.com/damionirving/gpumon-aws/pkg/nvml"
)

// window the one-shot CPU reading is averaged over
const cpuSampleWindow = time.Second

func Command(cliContext *cli.Context) error {
	zapLvl, err := log.ParseLogLevel(cliContext.String("log-level"))
	if err != nil {
		return err
	}
	log.Logger = log.CreateLogger(zapLvl, "")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	nvmlInstance, err := pkgnvml.New()
	if err != nil {
		return err
	}
	defer func() {
		_ = nvmlInstance.Shutdown()
	}()

	if !nvmlInstance.NVMLExists() {
		fmt.Println("NVML not found, skipping GPU readings")
	} else {
		fmt.Printf("driver version %s, CUDA version %s\n", nvmlInstance.DriverVersion(), nvmlInstance.CUDAVersion())

		tb := tablewriter.NewWriter(os.Stdout)
		tb.SetAutoWrapText(false)
		tb.SetAlignment(tablewriter.ALIGN_LEFT)
		tb.SetHeader([]string{"GPU", "NAME", "UUID", "GPU %", "MEM %", "MEM USED", "MEM TOTAL", "POWER", "TEMP"})

		for _, dev := range nvmlInstance.Devices() {
			util, err := pkgnvml.GetUtilization(dev.UUID, dev.Handle())
			if err != nil {
				log.Logger.Warnw("failed to get gpu utilization", "gpu", dev.Index, "error", err)
			}
			mem, err := pkgnvml.GetMemory(dev.UUID, dev.Handle())
			if err != nil {
				log.Logger.Warnw("failed to get gpu memory", "gpu", dev.Index, "error", err)
			}
			power, err := pkgnvml.GetPower(dev.UUID, dev.Handle())
			if err != nil {
				log.Logger.Warnw("failed to get gpu power usage", "gpu", dev.Index, "error", err)
			}
			temp, err := pkgnvml.GetTemperature(dev.UUID, dev.Handle())
			if err != nil {
				log.Logger.Warnw("failed to get gpu temperature", "gpu", dev.Index, "error", err)
			}

			tb.Append([]string{
				strconv.Itoa(dev.Index),
				dev.Name,
				dev.UUID,
				fmt.Sprintf("%d", util.GPUUsedPercent),
				fmt.Sprintf("%d", util.MemoryUsedPercent),
				humanize.IBytes(mem.UsedBytes),
				humanize.IBytes(mem.TotalBytes),
				fmt.Sprintf("%.1f W", power.UsageWatts()),
				fmt.Sprintf("%d C", temp.CurrentCelsius),
			})
		}
		tb.Render()
	}

	cpuUsed, err := host.CPUUsedPercent(ctx, cpuSampleWindow)
	if err != nil {
		return err
	}
	vm, err := host.MemoryUsage(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("cpu used: %.1f%%\n", cpuUsed)
	fmt.Printf("memory used: %.1f%% (%s / %s)\n",
		vm.UsedPercent,
		humanize.IBytes(vm.UsedBytes),
		humanize.IBytes(vm.TotalBytes),
	)

	return nil
}
