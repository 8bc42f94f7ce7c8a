package bulkcm

import (
	"testing"

	"github.com/ginjaninja78/bulkcm-parser/internal/types"
	"github.com/stretchr/testify/assert"
)

func start(prefix, local string) types.Event {
	return types.Event{Kind: types.StartElement, Prefix: prefix, Local: local}
}

func newTestParser() *parser {
	opts := Options{}
	opts.applyDefaults()
	return newParser(opts, func(objectRow) {})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		setup func(p *parser)
		event types.Event
		want  elementKind
	}{
		{
			name:  "container any case",
			event: start("xn", "vsdatacontainer"),
			want:  kindContainer,
		},
		{
			name:  "vendor type",
			event: start("es", "vsDataSomeMO"),
			want:  kindVendorType,
		},
		{
			name:  "generic prefix is never a vendor type",
			event: start("xn", "vsDataSomeMO"),
			want:  kindNewStructural,
		},
		{
			name:  "container metadata",
			setup: func(p *parser) { p.markers = 1 },
			event: start("gn", "vsDataType"),
			want:  kindStandardAttribute,
		},
		{
			name:  "vendor attribute",
			setup: func(p *parser) { p.vendor.Open("vsDataSomeMO", nil) },
			event: start("es", "parameter1"),
			want:  kindVendorAttribute,
		},
		{
			name:  "vsData child of an active vendor type",
			setup: func(p *parser) { p.vendor.Open("vsDataSomeMO", nil) },
			event: start("es", "vsDataNested"),
			want:  kindVendorAttribute,
		},
		{
			name:  "attributes wrapper",
			event: start("xn", "attributes"),
			want:  kindAttributesWrapper,
		},
		{
			name:  "repeated structural",
			setup: func(p *parser) { p.hier.PushStructural("SubNetwork", nil) },
			event: start("xn", "SubNetwork"),
			want:  kindRepeatedStructural,
		},
		{
			name:  "standard attribute",
			setup: func(p *parser) { p.markers = 1 },
			event: start("xn", "userLabel"),
			want:  kindStandardAttribute,
		},
		{
			name:  "new structural",
			event: start("xn", "MeContext"),
			want:  kindNewStructural,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser()
			if tt.setup != nil {
				tt.setup(p)
			}
			got := p.classify(tt.event)
			assert.Equal(t, tt.want, got, "got %s", got)
		})
	}
}

func TestClassify_CustomGenericPrefix(t *testing.T) {
	opts := Options{GenericPrefix: "gn"}
	opts.applyDefaults()
	p := newParser(opts, func(objectRow) {})

	assert.Equal(t, kindNewStructural, p.classify(start("gn", "vsDataSomeMO")))
	assert.Equal(t, kindVendorType, p.classify(start("xn", "vsDataSomeMO")))
}
