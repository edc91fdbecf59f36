package dispatch

import (
	"context"
	"testing"
)

func TestCapabilitiesOf(t *testing.T) {
	onMessage := func(context.Context, Message) error { return nil }
	onMessageWithCaller := func(context.Context, Message, *Caller) error { return nil }
	onError := func(context.Context, DeliveryError) error { return nil }

	tests := []struct {
		name string
		svc  Service
		want Capabilities
	}{
		{
			name: "empty service",
			svc:  Service{},
			want: Capabilities{},
		},
		{
			name: "message handler only",
			svc:  Service{OnMessage: onMessage},
			want: Capabilities{HasOnMessage: true, OnMessageArity: 1},
		},
		{
			name: "message handler with caller",
			svc:  Service{OnMessageWithCaller: onMessageWithCaller},
			want: Capabilities{HasOnMessage: true, OnMessageArity: 2},
		},
		{
			name: "error handler only",
			svc:  Service{OnError: onError},
			want: Capabilities{HasOnError: true},
		},
		{
			name: "full service",
			svc:  Service{OnMessageWithCaller: onMessageWithCaller, OnError: onError},
			want: Capabilities{HasOnMessage: true, HasOnError: true, OnMessageArity: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := capabilitiesOf(tt.svc)
			if got != tt.want {
				t.Errorf("capabilitiesOf() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCapabilities_HasHandler(t *testing.T) {
	caps := Capabilities{HasOnMessage: true, OnMessageArity: 1}

	if !caps.HasHandler(HandlerOnMessage) {
		t.Error("HasHandler(onMessage) = false, want true")
	}
	if caps.HasHandler(HandlerOnError) {
		t.Error("HasHandler(onError) = true, want false")
	}
	if caps.HasHandler("onShutdown") {
		t.Error("HasHandler(unknown) = true, want false")
	}
}

func TestCapabilities_HandlerArity(t *testing.T) {
	tests := []struct {
		name    string
		caps    Capabilities
		handler string
		want    int
	}{
		{"absent message handler", Capabilities{}, HandlerOnMessage, 0},
		{"arity one", Capabilities{HasOnMessage: true, OnMessageArity: 1}, HandlerOnMessage, 1},
		{"arity two", Capabilities{HasOnMessage: true, OnMessageArity: 2}, HandlerOnMessage, 2},
		{"absent error handler", Capabilities{}, HandlerOnError, 0},
		{"present error handler", Capabilities{HasOnError: true}, HandlerOnError, 1},
		{"unknown handler", Capabilities{HasOnMessage: true}, "onShutdown", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.caps.HandlerArity(tt.handler); got != tt.want {
				t.Errorf("HandlerArity(%s) = %d, want %d", tt.handler, got, tt.want)
			}
		})
	}
}
