package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/tuneinsight/lattigo/v4/utils"

	"github.com/pkpsig/go-pkpsig/pkpsig"
)

// Measurements for one parameter set.
type report struct {
	Name          string  `json:"name"`
	SigningKey    int     `json:"signing_key_bytes"`
	VerifyingKey  int     `json:"verifying_key_bytes"`
	Signature     int     `json:"signature_bytes"`
	Runs          int     `json:"runs"`
	KeyGenMS      float64 `json:"keygen_ms"`
	SignMS        float64 `json:"sign_ms"`
	VerifyMS      float64 `json:"verify_ms"`
	VerifyFailed  int     `json:"verify_failed"`
	TamperChecked int     `json:"tamper_checked"`
	TamperPassed  int     `json:"tamper_passed"`
}

func measure(ps *pkpsig.ParameterSet, runs int, seed string) (report, error) {
	r := report{
		Name:         ps.Name,
		SigningKey:   pkpsig.SigningKeySize(ps),
		VerifyingKey: pkpsig.VerifyingKeySize(ps),
		Signature:    pkpsig.SignatureSize(ps),
		Runs:         runs,
	}
	prng, err := utils.NewKeyedPRNG([]byte(seed + "/" + ps.Name))
	if err != nil {
		return r, err
	}

	start := time.Now()
	skey, vkey, err := pkpsig.KeyGen(ps, prng)
	if err != nil {
		return r, err
	}
	r.KeyGenMS = msSince(start)

	msg := make([]byte, 32)
	var signTotal, verifyTotal float64
	for i := 0; i < runs; i++ {
		if _, err := prng.Read(msg); err != nil {
			return r, err
		}
		start = time.Now()
		sig, err := pkpsig.Sign(ps, skey, msg)
		if err != nil {
			return r, err
		}
		signTotal += msSince(start)

		start = time.Now()
		if !pkpsig.Verify(ps, vkey, msg, sig) {
			r.VerifyFailed++
		}
		verifyTotal += msSince(start)

		// One modified byte per run, spread over the signature.
		pos := (i * 7919) % len(sig)
		sig[pos] ^= 0x01
		r.TamperChecked++
		if pkpsig.Verify(ps, vkey, msg, sig) {
			r.TamperPassed++
		}
	}
	if runs > 0 {
		r.SignMS = signTotal / float64(runs)
		r.VerifyMS = verifyTotal / float64(runs)
	}
	return r, nil
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}

// ------------------------- plotting: go-echarts HTML -------------------------

func newBarChart(title string, subtitle string, names []string, series map[string][]float64, order []string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "500px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names)
	for _, s := range order {
		items := make([]opts.BarData, len(series[s]))
		for i, v := range series[s] {
			items[i] = opts.BarData{Value: v}
		}
		bar.AddSeries(s, items)
	}
	bar.SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	return bar
}

func saveJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Render the page into a new file; write and close errors are both
// reported.
func saveHTML(path string, page *components.Page) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := page.Render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ------------------------------- main routine -------------------------------

func main() {
	runs := flag.Int("runs", 10, "number of signatures per parameter set")
	outDir := flag.String("out", "pkpsig_reports", "output directory for reports")
	seed := flag.String("seed", "pkpsig-report", "seed of the deterministic key and message generator")
	only := flag.String("params", "", "measure only this parameter set (default: all)")
	flag.Parse()

	sets := pkpsig.ParameterSets()
	if *only != "" {
		ps, err := pkpsig.ParameterSetByName(*only)
		if err != nil {
			log.Fatalf("params: %v", err)
		}
		sets = []*pkpsig.ParameterSet{ps}
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("mkdir: %v", err)
	}

	reports := make([]report, 0, len(sets))
	for _, ps := range sets {
		log.Printf("measuring %s (%d runs)", ps.Name, *runs)
		r, err := measure(ps, *runs, *seed)
		if err != nil {
			log.Fatalf("%s: %v", ps.Name, err)
		}
		if r.VerifyFailed != 0 || r.TamperPassed != 0 {
			log.Printf("warn: %s: %d valid signatures rejected, %d modified signatures accepted",
				ps.Name, r.VerifyFailed, r.TamperPassed)
		}
		reports = append(reports, r)
	}

	names := make([]string, len(reports))
	sizes := map[string][]float64{}
	timings := map[string][]float64{}
	for i, r := range reports {
		names[i] = r.Name
		sizes["signature"] = append(sizes["signature"], float64(r.Signature))
		sizes["verifying key"] = append(sizes["verifying key"], float64(r.VerifyingKey))
		sizes["signing key"] = append(sizes["signing key"], float64(r.SigningKey))
		timings["keygen"] = append(timings["keygen"], r.KeyGenMS)
		timings["sign"] = append(timings["sign"], r.SignMS)
		timings["verify"] = append(timings["verify"], r.VerifyMS)
	}

	ts := time.Now().Format("20060102_150405")
	jsonPath := filepath.Join(*outDir, fmt.Sprintf("pkpsig_report_%s.json", ts))
	if err := saveJSON(jsonPath, reports); err != nil {
		log.Printf("warn: save report: %v", err)
	}

	page := components.NewPage()
	page.AddCharts(
		newBarChart("Sizes (bytes)", "per parameter set", names, sizes,
			[]string{"signature", "verifying key", "signing key"}),
		newBarChart("Timings (ms)", fmt.Sprintf("mean over %d runs", *runs), names, timings,
			[]string{"keygen", "sign", "verify"}),
	)
	htmlPath := filepath.Join(*outDir, fmt.Sprintf("pkpsig_report_%s.html", ts))
	if err := saveHTML(htmlPath, page); err != nil {
		log.Fatalf("save html: %v", err)
	}
	fmt.Println("Report page:", htmlPath)
	fmt.Println("Report JSON:", jsonPath)
}
