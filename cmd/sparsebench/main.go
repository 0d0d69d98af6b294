// sparsebench measures the cost of the signed-log1p elementwise kernels and of
// descriptor bookkeeping against a registered sparse library backend.
//
// It reports the eager (op-at-a-time) and fused signed-log1p paths as
// effective memory bandwidth, and descriptor create/free plus pointer-rebind
// round-trips per second.
//
// Select and configure the backend with -backend or the PYTORCH_SPARSE_BACKEND
// environment variable, e.g. "sim:cc=7.5,cuda=11.4".
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/janpfeifer/must"
	"github.com/mpalrocks/pytorch/backends/cusparse"
	"github.com/mpalrocks/pytorch/ops"
	"github.com/mpalrocks/pytorch/types/tensors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"

	_ "github.com/mpalrocks/pytorch/backends/cusparse/simsparse"
)

var (
	flagRows    = flag.Int("rows", 10, "Rows of the benchmark tensor.")
	flagCols    = flag.Int("cols", 1467, "Columns of the benchmark tensor.")
	flagIters   = flag.Int("iters", 1000, "Iterations per benchmark.")
	flagBackend = flag.String("backend", "", "Backend configuration, formatted as "+
		"\"<name>:<config>\". Empty selects the default, see PYTORCH_SPARSE_BACKEND.")
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFF")).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999")).
			PaddingLeft(1).PaddingRight(1)
	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 2, 0, 2)
)

func newResultsTable() *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == 1:
				return headerRowStyle
			case row%2 == 0:
				return oddRowStyle
			default:
				return evenRowStyle
			}
		})
}

func newBar(description string, steps int) *progressbar.ProgressBar {
	return progressbar.NewOptions(steps,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("iters"),
		progressbar.OptionSetTheme(progressbar.ThemeUnicode),
		progressbar.OptionClearOnFinish(),
	)
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	var lib cusparse.Library
	if *flagBackend != "" {
		lib = must.M1(cusparse.NewWithConfig(*flagBackend))
	} else {
		lib = must.M1(cusparse.New())
	}
	defer lib.Finalize()
	klog.V(1).Infof("using backend %q: %s", lib.Name(), lib.Description())

	fmt.Println(titleStyle.Render(fmt.Sprintf("sparsebench: %d x %d, %d iterations on %s",
		*flagRows, *flagCols, *flagIters, lib.Description())))

	table := newResultsTable()
	table.Row("Benchmark", "Time/op", "Throughput")

	input := benchmarkInput(*flagRows, *flagCols)
	// One read plus one write of the tensor per elementwise pass.
	passBytes := uint64(2 * input.Shape().Memory())

	elapsed := runLoop("eager signed-log1p", func() {
		ops.SignedLog1p[float32](input)
	})
	table.Row("signed-log1p eager", perOp(elapsed), bandwidth(passBytes, elapsed))

	elapsed = runLoop("fused signed-log1p", func() {
		ops.SignedLog1pFused[float32](input)
	})
	table.Row("signed-log1p fused", perOp(elapsed), bandwidth(passBytes, elapsed))

	elapsed = runLoop("dense descriptor round-trip", func() {
		descriptor := must.M1(cusparse.NewDnMatDescriptor(lib, input))
		descriptor.Free()
	})
	table.Row("DnMat create+free", perOp(elapsed), perSecond(elapsed))

	csr := benchmarkCsrInput(*flagRows, *flagCols)
	elapsed = runLoop("CSR descriptor round-trip", func() {
		descriptor := must.M1(cusparse.NewSpMatCsrDescriptor(lib, csr))
		descriptor.Free()
	})
	table.Row("CSR create+free", perOp(elapsed), perSecond(elapsed))

	descriptor := must.M1(cusparse.NewSpMatCsrDescriptor(lib, csr))
	defer descriptor.Free()
	elapsed = runLoop("CSR pointer rebind", func() {
		must.M(descriptor.SetTensor(csr))
	})
	table.Row("CSR pointer rebind", perOp(elapsed), perSecond(elapsed))

	fmt.Println(table.Render())
}

// runLoop runs fn *flagIters times under a progress bar and returns the
// elapsed time per iteration.
func runLoop(description string, fn func()) time.Duration {
	bar := newBar(description, *flagIters)
	start := time.Now()
	for range *flagIters {
		fn()
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	return time.Since(start) / time.Duration(*flagIters)
}

func benchmarkInput(rows, cols int) *tensors.Tensor {
	data := make([]float32, rows*cols)
	for i := range data {
		data[i] = float32(i%101-50) * 0.37
	}
	return tensors.FromFlatDataAndDimensions(data, rows, cols)
}

// benchmarkCsrInput builds a CSR tensor with 2 stored values per row.
func benchmarkCsrInput(rows, cols int) *tensors.Tensor {
	crowData := make([]int32, rows+1)
	for i := range crowData {
		crowData[i] = int32(2 * i)
	}
	nnz := 2 * rows
	colData := make([]int32, nnz)
	for i := range colData {
		colData[i] = int32(i % cols)
	}
	crow := tensors.FromFlatDataAndDimensions(crowData, rows+1)
	col := tensors.FromFlatDataAndDimensions(colData, nnz)
	values := tensors.FromFlatDataAndDimensions(make([]float32, nnz), nnz)
	return tensors.SparseCsrFromParts(crow, col, values, rows, cols)
}

func perOp(d time.Duration) string {
	return d.String()
}

func perSecond(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return humanize.CommafWithDigits(float64(time.Second)/float64(d), 0) + " ops/s"
}

func bandwidth(bytes uint64, d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	perSec := float64(bytes) / d.Seconds()
	return humanize.Bytes(uint64(perSec)) + "/s"
}
