package astroreport

import (
	"fmt"
	"strings"

	"github.com/yanqian/ai-astrology/internal/domain/chart"
)

// planetMeanings are static descriptions returned with every report.
var planetMeanings = map[chart.BodyID]string{
	chart.BodySun:       "太阳星座代表你的核心自我、生命力和主要性格特质",
	chart.BodyMoon:      "月亮星座代表你的内在情感、潜意识和情绪需求",
	chart.BodyAscendant: "上升星座代表你的外在表现、第一印象和人生态度",
	chart.BodyMercury:   "水星星座代表你的思维方式、沟通风格和学习能力",
	chart.BodyVenus:     "金星星座代表你的爱情观、审美品味和人际关系",
	chart.BodyMars:      "火星星座代表你的行动力、冲动性和能量表达",
}

type categoryInfo struct {
	title       string
	focus       string
	bodies      []chart.BodyID
	description string
}

var categoryTable = map[Category]categoryInfo{
	CategoryPersonality: {
		title:       "性格特质深度分析",
		focus:       "太阳、月亮、上升星座的综合性格特质",
		bodies:      []chart.BodyID{chart.BodySun, chart.BodyMoon, chart.BodyAscendant},
		description: "深入分析核心性格、情感模式和外在表现的组合特点",
	},
	CategoryCommunication: {
		title:       "沟通风格分析",
		focus:       "水星星座的思维和沟通特点",
		bodies:      []chart.BodyID{chart.BodyMercury, chart.BodySun, chart.BodyMoon},
		description: "分析思维方式、表达风格和学习偏好",
	},
	CategoryLove: {
		title:       "爱情观与关系分析",
		focus:       "金星星座的情感和人际关系特点",
		bodies:      []chart.BodyID{chart.BodyVenus, chart.BodyMars, chart.BodyMoon},
		description: "分析爱情观念、情感表达和人际关系模式",
	},
	CategoryCareer: {
		title:       "事业倾向分析",
		focus:       "火星、太阳星座的行动力和事业潜能",
		bodies:      []chart.BodyID{chart.BodyMars, chart.BodySun, chart.BodyMercury},
		description: "分析工作风格、行动力和职业发展方向",
	},
}

func buildOverviewPrompt(c chart.ChartResult) string {
	var b strings.Builder
	b.WriteString("你是一位温暖、智慧、充满洞察力的AI占星师。请根据以下完整的星盘信息，为用户生成一份深入、积极、个性化的综合分析报告。\n\n")
	b.WriteString("**完整星盘信息：**\n")
	for _, body := range []chart.BodyID{chart.BodySun, chart.BodyMoon, chart.BodyAscendant, chart.BodyMercury, chart.BodyVenus, chart.BodyMars} {
		fmt.Fprintf(&b, "- %s星座：%s (位于第%d宫)\n", body.DisplayName(), c.SignOf(body), c.HouseOf(body))
	}
	b.WriteString("\n**宫位背景信息：**\n")
	for _, body := range []chart.BodyID{chart.BodySun, chart.BodyMoon, chart.BodyMercury} {
		n := c.HouseOf(body)
		fmt.Fprintf(&b, "- 第%d宫：%s\n", n, c.House(n).Meaning)
	}
	b.WriteString(`
**请按照以下结构生成分析报告：**

1. **整体性格概述**（80字）：综合星座和宫位的整体印象
2. **核心特质分析**（120字）：太阳、月亮、上升的星座和宫位组合特点
3. **思维与沟通**（70字）：水星的星座和宫位影响
4. **爱情与关系**（70字）：金星的星座和宫位影响
5. **行动与能量**（70字）：火星的星座和宫位影响
6. **成长建议**（80字）：基于宫位位置的具体建议

**要求：**
- 语调温暖、积极、有同理心
- 结合星座和宫位的双重影响
- 总字数约490字
- 强调优势和潜能，避免消极表达
- 提供具体的建设性建议

请直接输出分析报告，不要包含任何前缀或解释。`)
	return b.String()
}

func buildCategoryPrompt(c chart.ChartResult, category Category) string {
	info := categoryTable[category]

	var b strings.Builder
	fmt.Fprintf(&b, "你是一位专业的AI占星师，请基于以下星盘信息，专门针对\"%s\"生成深度分析报告。\n\n", info.title)
	b.WriteString("**相关星体信息：**\n")
	for _, body := range info.bodies {
		fmt.Fprintf(&b, "- %s星座：%s\n", body.DisplayName(), c.SignOf(body))
	}
	b.WriteString("\n**宫位位置：**\n")
	for _, body := range info.bodies {
		fmt.Fprintf(&b, "- %s在第%d宫\n", body.DisplayName(), c.HouseOf(body))
	}
	fmt.Fprintf(&b, "\n**分析重点：**\n%s\n\n", info.description)
	b.WriteString("**分析结构：**\n")
	fmt.Fprintf(&b, "1. **核心特点**（120字）：%s的主要特征\n", info.focus)
	b.WriteString("2. **具体表现**（100字）：在日常生活中的具体表现和行为模式\n")
	b.WriteString("3. **优势潜能**（80字）：这个方面的天赋和优势\n")
	b.WriteString("4. **成长建议**（80字）：如何发挥优势和改进不足\n\n")
	b.WriteString("**要求：**\n")
	fmt.Fprintf(&b, "- 专注于%s主题，深入而专业\n", category)
	b.WriteString("- 语调温暖积极，提供建设性建议\n")
	b.WriteString("- 结合宫位影响进行分析\n")
	b.WriteString("- 总字数约380字\n")
	b.WriteString("- 结合具体星座特点，避免泛泛而谈\n\n")
	b.WriteString("请直接输出分析报告，不要包含标题或前缀。")
	return b.String()
}

func buildHouseAnalysisPrompt(c chart.ChartResult) string {
	var b strings.Builder
	b.WriteString("你是一位专业的占星师，请基于星体在宫位的位置，生成详细的宫位分析报告。\n\n")
	b.WriteString("**星体宫位分布：**\n")
	for _, body := range chart.Planets {
		n := c.HouseOf(body)
		fmt.Fprintf(&b, "- %s在第%d宫：%s\n", body.DisplayName(), n, c.House(n).Meaning)
	}
	b.WriteString(`
**分析结构：**
1. **人生重点领域**（120字）：基于星体分布识别人生重点关注的领域
2. **天赋与优势**（100字）：分析星体宫位组合带来的天赋和优势
3. **挑战与成长点**（80字）：指出需要关注和发展的生活领域
4. **生活建议**（100字）：基于宫位分布提供具体的生活指导

**要求：**
- 专业而易懂，避免过于深奥的术语
- 积极正面，强调发展潜能
- 总字数约400字
- 结合具体宫位含义进行分析

请直接输出宫位分析报告，不要包含标题或前缀。`)
	return b.String()
}

// cannedOverview is served when every provider failed for the overview section.
func cannedOverview(c chart.ChartResult) string {
	sun := c.SignOf(chart.BodySun).String()
	moon := c.SignOf(chart.BodyMoon).String()
	rising := c.SignOf(chart.BodyAscendant).String()
	return fmt.Sprintf(`你好！根据你的星盘信息，我看到了一个独特而美好的你。

你的太阳星座是%[1]s，这意味着你的核心性格充满了%[1]s的特质。你拥有独特的生命力和个人魅力，这是你最闪亮的地方。

你的月亮星座是%[2]s，这揭示了你内心深处的情感世界。%[2]s的月亮让你在情感上有着特别的敏感度和直觉力，这是你的情感智慧所在。

你的上升星座是%[3]s，这影响着你给别人的第一印象。%[3]s的上升让你在与人交往时展现出独特的魅力和风格。

这三个星座的组合让你成为了一个立体而丰富的人。建议你多关注自己的内在需求，同时也要勇敢地展现真实的自己。相信你的直觉，它会指引你走向属于你的美好未来。

记住，星盘只是一个工具，真正的力量在于你如何运用这些天赋去创造属于自己的人生。`, sun, moon, rising)
}
