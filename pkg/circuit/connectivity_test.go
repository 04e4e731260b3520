package circuit

import (
	"reflect"
	"testing"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want Endpoint
	}{
		{"R1.2", Endpoint{Component: "R1", Pin: "2", Raw: "R1.2"}},
		{"U1.VCC.alt", Endpoint{Component: "U1", Pin: "VCC.alt", Raw: "U1.VCC.alt"}},
		{"VCC", Endpoint{Component: "VCC", Virtual: true, Raw: "VCC"}},
		{"GND.1", Endpoint{Component: "GND", Pin: "1", Virtual: true, Raw: "GND.1"}},
		{"J1", Endpoint{Component: "J1", Raw: "J1"}},
		{"", Endpoint{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseEndpoint(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseEndpoint(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEndpointString(t *testing.T) {
	tests := []struct {
		ep   Endpoint
		want string
	}{
		{Endpoint{Component: "R1", Pin: "1"}, "R1.1"},
		{Endpoint{Component: "R1"}, "R1"},
		{ParseEndpoint("VCC"), "VCC"},
	}
	for _, tt := range tests {
		if got := tt.ep.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestDocumentConnectivity(t *testing.T) {
	doc := &Document{
		Nets: []Net{{ID: "N1", Connections: []NetConnection{
			{Component: "R1", Pin: "1"},
			{Component: "C1", Pin: "2"},
		}}},
		Connections: []Connection{{From: "R1.2", To: "GND"}},
	}

	reps := doc.Connectivity()
	if len(reps) != 2 {
		t.Fatalf("len(Connectivity()) = %d, want 2", len(reps))
	}
	if reps[0].Representation() != RepresentationNets || reps[1].Representation() != RepresentationLegacy {
		t.Errorf("representations = %v, %v", reps[0].Representation(), reps[1].Representation())
	}

	nets := reps[0].Groups()
	if len(nets) != 1 || nets[0].ID != "N1" || nets[0].Path != "nets.0" {
		t.Fatalf("net groups = %+v", nets)
	}
	if got := nets[0].Endpoints[1].Path; got != "nets.0.connections.1" {
		t.Errorf("endpoint path = %q", got)
	}

	legacy := reps[1].Groups()
	if len(legacy) != 1 || len(legacy[0].Endpoints) != 2 {
		t.Fatalf("legacy groups = %+v", legacy)
	}
	if to := legacy[0].Endpoints[1]; !to.Virtual || to.Path != "connections.0.to" {
		t.Errorf("legacy to endpoint = %+v", to)
	}

	connected := doc.ConnectedComponents()
	if !connected["R1"] || !connected["C1"] || connected["GND"] {
		t.Errorf("ConnectedComponents() = %v", connected)
	}
}

func TestDocumentConnectivityEmpty(t *testing.T) {
	if got := (&Document{}).Connectivity(); len(got) != 0 {
		t.Errorf("Connectivity() = %v, want empty", got)
	}
}

func TestNetPinSet(t *testing.T) {
	n := Net{ID: "N1", Connections: []NetConnection{
		{Component: "U1", Pin: "3"},
		{Component: "R1", Pin: "2"},
		{Component: "U1", Pin: "3"},
		{Component: "R1", Pin: "1"},
	}}
	want := []NetConnection{
		{Component: "R1", Pin: "1"},
		{Component: "R1", Pin: "2"},
		{Component: "U1", Pin: "3"},
	}
	if got := n.PinSet(); !reflect.DeepEqual(got, want) {
		t.Errorf("PinSet() = %+v, want %+v", got, want)
	}
}

func TestRepresentationString(t *testing.T) {
	if RepresentationNets.String() != "nets" || RepresentationLegacy.String() != "connections" {
		t.Error("unexpected representation names")
	}
}
