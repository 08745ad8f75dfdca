package dispatch

import (
	"syncwatch/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpand(t *testing.T) {
	event := model.Event{
		ID:       1,
		Folder:   "photos",
		Path:     "vacation.jpg",
		DataType: "file",
	}

	testCases := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "thumbnail example",
			template: "convert ${path} -resize 800x600 thumb_${folder}_${id}.jpg",
			want:     "convert vacation.jpg -resize 800x600 thumb_photos_1.jpg",
		},
		{"no tokens", "echo hello $HOME {x}", "echo hello $HOME {x}"},
		{"empty", "", ""},
		{"data type", "echo ${data_type}", "echo file"},
		{"unknown token", "echo [${nope}]", "echo []"},
		{"empty token", "a${}b", "ab"},
		{"adjacent tokens", "${folder}${id}", "photos1"},
		{"unterminated", "echo ${path} ${folder", "echo vacation.jpg ${folder"},
		{"unterminated only", "${", "${"},
		{"dollar without brace", "cost $5 ${id}", "cost $5 1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Expand(tc.template, event))
		})
	}
}

func TestExpand_LargeID(t *testing.T) {
	event := model.Event{ID: 9007199254740993}
	assert.Equal(t, "9007199254740993", Expand("${id}", event))
}
