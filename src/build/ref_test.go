package build

import "testing"

func TestParseImageRef(t *testing.T) {
	tests := []struct {
		in      string
		want    ImageRef
		wantErr bool
	}{
		{in: "svc:1.2.3", want: ImageRef{Name: "svc", Tag: "1.2.3"}},
		{in: "svc", want: ImageRef{Name: "svc", Tag: "latest"}},
		{in: "123.dkr.ecr.us-east-1.amazonaws.com/team/svc:0.0.999", want: ImageRef{Name: "123.dkr.ecr.us-east-1.amazonaws.com/team/svc", Tag: "0.0.999"}},
		{in: "localhost:5000/svc:1", want: ImageRef{Name: "localhost:5000/svc", Tag: "1"}},
		{in: "Svc:1", wantErr: true},
		{in: "svc:bad tag", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseImageRef(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseImageRef(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseImageRef(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestImageRef_StringRoundTrip(t *testing.T) {
	ref := ImageRef{Name: "svc", Tag: "1.2.3"}
	if ref.String() != "svc:1.2.3" {
		t.Errorf("String() = %q", ref.String())
	}
}
