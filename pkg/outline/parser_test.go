package outline

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		title   string
		outline []string
		content []string
	}{
		{
			name: "literal case",
			input: "### PPT大纲：新能源汽车\n" +
				"#### 幻灯片1: 市场概况\n" +
				"- 内容要点：\n" +
				"  - 增长迅速\n" +
				"  - 政策支持\n",
			title:   "新能源汽车",
			outline: []string{"市场概况"},
			content: []string{"市场概况\n  增长迅速\n  政策支持"},
		},
		{
			name: "metadata and captions dropped",
			input: "### PPT大纲：AI 简介\n" +
				"#### 幻灯片1: 什么是AI\n" +
				"- 标题：什么是AI\n" +
				"- 副标题：入门\n" +
				"- 图片：robot.png\n" +
				"- 内容要点：\n" +
				"  - 机器学习\n" +
				"  - 说明文字：一张图\n" +
				"- 说明文字：另一张图\n" +
				"- 深度学习\n" +
				"#### 幻灯片2: 应用\n" +
				"  - 医疗\n",
			title:   "AI 简介",
			outline: []string{"什么是AI", "应用"},
			content: []string{"什么是AI\n  机器学习\n  深度学习", "应用\n  医疗"},
		},
		{
			name: "indented metadata lookalike is content",
			input: "#### 幻灯片1: A\n" +
				"  - 标题：保留\n",
			title:   DefaultTitle,
			outline: []string{"A"},
			content: []string{"A\n  标题：保留"},
		},
		{
			name: "heading without separator",
			input: "### PPT大纲：T\n" +
				"#### 幻灯片1：没有英文冒号\n" +
				"- 点\n" +
				"#### 幻灯片2: \n",
			title:   "T",
			outline: []string{UntitledSlide, UntitledSlide},
			content: []string{UntitledSlide + "\n  点", UntitledSlide + "\n"},
		},
		{
			name:    "title split on first separator",
			input:   "#### 幻灯片3: 前: 后",
			title:   DefaultTitle,
			outline: []string{"前: 后"},
			content: []string{"前: 后\n"},
		},
		{
			name: "content before first slide ignored",
			input: "- 孤立\n" +
				"  - 孤立\n" +
				"### PPT大纲：  T  \n",
			title:   "T",
			outline: []string{},
			content: []string{},
		},
		{
			name:    "empty input",
			input:   "",
			title:   DefaultTitle,
			outline: []string{},
			content: []string{},
		},
		{
			name:    "crlf line endings",
			input:   "### PPT大纲：T\r\n#### 幻灯片1: S\r\n  - p\r\n",
			title:   "T",
			outline: []string{"S"},
			content: []string{"S\n  p"},
		},
		{
			name:    "first title line wins",
			input:   "### PPT大纲：一\n### PPT大纲：二\n",
			title:   "一",
			outline: []string{},
			content: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if got.Title != tt.title {
				t.Errorf("Title = %q, want %q", got.Title, tt.title)
			}
			if !reflect.DeepEqual(got.Outline, tt.outline) {
				t.Errorf("Outline = %q, want %q", got.Outline, tt.outline)
			}
			if !reflect.DeepEqual(got.Content, tt.content) {
				t.Errorf("Content = %q, want %q", got.Content, tt.content)
			}
		})
	}
}

func TestParseSlides(t *testing.T) {
	got := Parse("#### 幻灯片1: A\n- x\n- y\n#### 幻灯片2: B\n")
	want := []Slide{{Title: "A", Points: []string{"x", "y"}}, {Title: "B", Points: []string{}}}
	if !reflect.DeepEqual(got.Slides, want) {
		t.Errorf("Slides = %+v, want %+v", got.Slides, want)
	}
}
