package parser

// 分段键，SectionMap 只接受这一组键
const (
	SectionProfile        = "profile"
	SectionSummary        = "summary"
	SectionExperience     = "experience"
	SectionEducation      = "education"
	SectionSkills         = "skills"
	SectionLanguages      = "languages"
	SectionReferences     = "references"
	SectionHobbies        = "hobbies"
	SectionCertifications = "certifications"
	SectionContact        = "contact"
	SectionPersonal       = "personal"
	SectionProjects       = "projects"
	SectionCertificates   = "certificates"
	SectionBody           = "body"
)

const sectionCount = 14

// SectionKeys 全部分段键，顺序即调试输出和遍历顺序
var SectionKeys = [sectionCount]string{
	SectionProfile,
	SectionSummary,
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionLanguages,
	SectionReferences,
	SectionHobbies,
	SectionCertifications,
	SectionContact,
	SectionPersonal,
	SectionProjects,
	SectionCertificates,
	SectionBody,
}

// HeadingKeys 可识别的标题行词表，顺序即正则候选顺序
var HeadingKeys = []string{
	"profile",
	"summary",
	"experience",
	"employment",
	"work experience",
	"education",
	"skills",
	"technical skills",
	"technical",
	"languages",
	"references",
	"hobbies",
	"certifications",
	"contact",
	"personal",
	"projects",
	"certificates",
}

// headingAliases 别名标题归并到规范分段
var headingAliases = map[string]string{
	"employment":       SectionExperience,
	"work experience":  SectionExperience,
	"technical skills": SectionSkills,
	"technical":        SectionSkills,
}

// reclassifySources 重新归类只扫描这两个分段
var reclassifySources = []string{SectionBody, SectionExperience}

// EducationIndicators 出现任一词即视为教育相关的文本块
var EducationIndicators = []string{
	"university",
	"college",
	"institute",
	"degree",
	"certificate",
	"bsc",
	"diploma",
	"kenya certificate",
	"kcse",
	"school",
}

// DegreeKeywords 学位行关键词
var DegreeKeywords = []string{
	"Degree",
	"BSc",
	"Bachelor",
	"Certificate",
	"Diploma",
	"Kenya Certificate",
	"KCSE",
	"Certificate in",
}

// InstitutionKeywords 学校行关键词，包含常见的院校名称片段
var InstitutionKeywords = []string{
	"University",
	"College",
	"Institute",
	"School",
	"Academy",
	"Technical",
	"KIBABII",
	"THIKA",
	"Nyeri",
}

// TitleKeywords 职位行关键词
var TitleKeywords = []string{
	"developer",
	"engineer",
	"software",
	"manager",
	"analyst",
	"consultant",
}

// SoftSkillHeadings 软技能段落的标题短语，较长的短语在前
var SoftSkillHeadings = []string{
	"soft skills",
	"soft skill",
	"personal skills",
	"core skills",
	"core competencies",
}

// softSkillVocabulary 软技能词表，元素是正则片段
var softSkillVocabulary = []string{
	"Communication",
	"Adaptability",
	"Leadership",
	"Problem[- ]Solving",
	"Teamwork",
	"Time Management",
	"Creativity",
	"Attention to detail",
	"Resilient",
	"Innovative",
}

const (
	bulletMarker = "•"

	titleMaxWords = 5
	contactTopN   = 5

	softSkillWindow     = 400
	softSkillMaxLen     = 40
	softSkillMaxEntries = 20

	languagesMaxEntries = 10

	debugSectionMaxLen = 400
	debugTopLines      = 8
)
