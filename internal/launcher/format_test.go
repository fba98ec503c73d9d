package launcher

import "testing"

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    uint64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{157286400, "150.0 MB"},
		{1073741824, "1.0 GB"},
		{5 * 1024 * 1073741824, "5120.0 GB"},
	}

	for _, test := range tests {
		result := FormatBytes(test.bytes)
		if result != test.expected {
			t.Errorf("FormatBytes(%d) = %s, expected %s", test.bytes, result, test.expected)
		}
	}
}

func TestProgressText(t *testing.T) {
	tests := []struct {
		percentage float64
		expected   string
	}{
		{42.4, "42% - 1.5 KB / 1.0 MB"},
		{2.5, "3% - 1.5 KB / 1.0 MB"},
		{0.5, "1% - 1.5 KB / 1.0 MB"},
		{99.5, "100% - 1.5 KB / 1.0 MB"},
	}

	for _, test := range tests {
		p := DownloadProgress{DownloadedBytes: 1536, TotalBytes: 1048576, Percentage: test.percentage}
		if result := ProgressText(p); result != test.expected {
			t.Errorf("ProgressText(%v) = %s, expected %s", test.percentage, result, test.expected)
		}
	}
}
