package chart

import "math"

var houseTable = [12]HouseMeta{
	{Name: "第一宫 (上升宫)", Meaning: "自我意识、外在形象、第一印象、个性表达", Keywords: []string{"个性", "外表", "活力", "自我"}},
	{Name: "第二宫 (财帛宫)", Meaning: "金钱观念、物质价值、自我价值、才能资源", Keywords: []string{"财富", "价值观", "才能", "资源"}},
	{Name: "第三宫 (兄弟宫)", Meaning: "沟通交流、学习能力、兄弟姐妹、短程旅行", Keywords: []string{"沟通", "学习", "兄弟", "思维"}},
	{Name: "第四宫 (田宅宫)", Meaning: "家庭根基、情感安全、内在需求、房产家庭", Keywords: []string{"家庭", "根基", "安全感", "内心"}},
	{Name: "第五宫 (子女宫)", Meaning: "创造力、恋爱关系、子女、娱乐休闲", Keywords: []string{"创造", "恋爱", "子女", "娱乐"}},
	{Name: "第六宫 (工作宫)", Meaning: "日常工作、健康状况、服务精神、生活规律", Keywords: []string{"工作", "健康", "服务", "日常"}},
	{Name: "第七宫 (夫妻宫)", Meaning: "伴侣关系、合作伙伴、公开敌人、婚姻", Keywords: []string{"伴侣", "合作", "婚姻", "关系"}},
	{Name: "第八宫 (疾厄宫)", Meaning: "深层转化、他人资源、神秘学、生死议题", Keywords: []string{"转化", "神秘", "深层", "重生"}},
	{Name: "第九宫 (迁移宫)", Meaning: "高等教育、哲学思想、长途旅行、精神追求", Keywords: []string{"哲学", "高教", "旅行", "信仰"}},
	{Name: "第十宫 (事业宫)", Meaning: "事业成就、社会地位、权威形象、人生目标", Keywords: []string{"事业", "地位", "成就", "目标"}},
	{Name: "第十一宫 (福德宫)", Meaning: "朋友群体、社团活动、理想愿景、社会改革", Keywords: []string{"朋友", "理想", "群体", "未来"}},
	{Name: "第十二宫 (玄秘宫)", Meaning: "潜意识、隐藏能力、灵性成长、业力清理", Keywords: []string{"潜意识", "灵性", "隐藏", "业力"}},
}

// HouseMetaFor returns the static description of house n; out of range falls back to house 1.
func HouseMetaFor(n int) HouseMeta {
	if n < 1 || n > 12 {
		n = 1
	}
	meta := houseTable[n-1]
	meta.Keywords = append([]string(nil), meta.Keywords...)
	return meta
}

// BuildHouses turns twelve cusp longitudes into house records. House 1 starts at
// cusps[0]; for quadrant systems that is the ascendant itself, so ascendant only
// takes over when cusps[0] is not a number.
func BuildHouses(ascendant float64, cusps [12]float64) [12]HouseCusp {
	if math.IsNaN(cusps[0]) {
		cusps[0] = ascendant
	}
	var houses [12]HouseCusp
	for i, cusp := range cusps {
		start := NormalizeLongitude(cusp)
		houses[i] = HouseCusp{
			Number:         i + 1,
			StartLongitude: start,
			Sign:           SignFor(start),
			Degree:         DegreeInSign(start),
			HouseMeta:      HouseMetaFor(i + 1),
		}
	}
	return houses
}

// EqualCusps returns twelve 30 degree cusps starting at the ascendant.
func EqualCusps(ascendant float64) [12]float64 {
	var cusps [12]float64
	for i := range cusps {
		cusps[i] = NormalizeLongitude(ascendant + float64(i)*30)
	}
	return cusps
}

// AssignHouse returns the house containing lon, walking houses in order and
// treating a next-cusp below the current one as wrapping past 360 degrees.
// Degenerate tables where nothing matches yield house 1.
func AssignHouse(lon float64, houses [12]HouseCusp) int {
	for i := 0; i < 12; i++ {
		start := houses[i].StartLongitude
		end := houses[(i+1)%12].StartLongitude
		if end < start {
			end += 360
		}
		p := lon
		if p < start && end > start {
			p += 360
		}
		if p >= start && p < end {
			return i + 1
		}
	}
	return 1
}
