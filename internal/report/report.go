package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/EpicMandM/esxi-lab-provider/dsusage/internal/config"
	"github.com/EpicMandM/esxi-lab-provider/dsusage/internal/scanner"
	"github.com/thoas/go-funk"
	"sigs.k8s.io/yaml"
)

// Reporter renders scan results and failures to the user.
type Reporter struct {
	w      io.Writer
	format string
}

func New(w io.Writer, format string) (*Reporter, error) {
	if format == "" {
		format = config.FormatText
	}
	if !funk.ContainsString(config.LegalFormats, format) {
		return nil, fmt.Errorf("output format must be one of %s", strings.Join(config.LegalFormats, ", "))
	}
	return &Reporter{w: w, format: format}, nil
}

type deviceView struct {
	Label string `json:"label"`
	Kind  string `json:"kind"`
	File  string `json:"file,omitempty"`
}

type machineView struct {
	Name    string       `json:"name"`
	Devices []deviceView `json:"devices"`
}

type resultView struct {
	Datastore  string        `json:"datastore"`
	Datacenter string        `json:"datacenter,omitempty"`
	Status     string        `json:"status"`
	Machines   []machineView `json:"machines"`
}

func newResultView(res *scanner.Result) resultView {
	view := resultView{
		Datastore:  res.Datastore,
		Datacenter: res.Datacenter,
		Status:     string(res.Status),
		Machines:   make([]machineView, 0, len(res.Matches)),
	}
	for _, m := range res.Matches {
		mv := machineView{Name: m.Name, Devices: make([]deviceView, 0, len(m.Devices))}
		for _, d := range m.Devices {
			mv.Devices = append(mv.Devices, deviceView{Label: d.Label, Kind: string(d.Kind), File: d.Backing.FileName})
		}
		view.Machines = append(view.Machines, mv)
	}
	return view
}

// Result writes res in the reporter's format.
func (r *Reporter) Result(res *scanner.Result) error {
	switch r.format {
	case config.FormatJSON:
		data, err := json.MarshalIndent(newResultView(res), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode json report: %w", err)
		}
		_, err = fmt.Fprintln(r.w, string(data))
		return err
	case config.FormatYAML:
		data, err := yaml.Marshal(newResultView(res))
		if err != nil {
			return fmt.Errorf("failed to encode yaml report: %w", err)
		}
		_, err = r.w.Write(data)
		return err
	default:
		return r.text(res)
	}
}

func (r *Reporter) text(res *scanner.Result) error {
	var b strings.Builder
	switch res.Status {
	case scanner.StatusNotFound:
		fmt.Fprintf(&b, "Datastore '%s' not found.\n", res.Datastore)
	case scanner.StatusFound:
		fmt.Fprintf(&b, "Virtual machines using datastore '%s':\n", res.Datastore)
		for _, name := range res.Names() {
			fmt.Fprintf(&b, "- %s\n", name)
		}
	default:
		fmt.Fprintf(&b, "No virtual machines found using datastore '%s'.\n", res.Datastore)
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

// InvalidName reports a missing or empty datastore name.
func (r *Reporter) InvalidName() {
	_, _ = fmt.Fprintln(r.w, "Datastore name is wrong")
}

// Fault reports a failure raised by the management endpoint.
func (r *Reporter) Fault(err error) {
	_, _ = fmt.Fprintf(r.w, "Caught fault: %s\n", scanner.FaultMessage(err))
}
