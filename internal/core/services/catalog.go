package services

import (
	"crypto/md5"
	"math/big"
	"unicode/utf8"
)

// imagingFinding is one canned entry of the macro-level feature
// extractor. Selection is keyed off the image content hash so the
// same upload always yields the same finding.
type imagingFinding struct {
	Description string
	Regions     []string
	Severity    string
	Suspected   string
}

// imagingCatalog holds the fixed set of radiology findings. Order
// matters: the hash-derived index must keep mapping existing uploads
// to the same entry.
var imagingCatalog = []imagingFinding{
	{
		Description: "MRI T1加权像显示右侧海马体头部（Hippocampal Head）体积较常模缩小约 12%，灰白质对比度在颞叶内侧降低。内嗅皮层可见轻度萎缩。",
		Regions:     []string{"海马体 CA1", "内嗅皮层", "颞叶"},
		Severity:    "中度风险",
		Suspected:   "阿尔茨海默病 (AD) 早期",
	},
	{
		Description: "fMRI 静息态数据显示杏仁核（Amygdala）与前额叶皮层（PFC）之间的功能连接（Functional Connectivity）显著减弱。情感调节回路异常。",
		Regions:     []string{"杏仁核", "前额叶皮层"},
		Severity:    "高风险",
		Suspected:   "双相情感障碍 (BIP) / 精神分裂症 (SCZ)",
	},
	{
		Description: "SWI 序列显示基底节区及半卵圆中心可见多发微出血灶（Microbleeds）。T2-FLAIR 显示脑室旁白质高信号（WMH），Fazekas 2级。",
		Regions:     []string{"基底节", "半卵圆中心", "白质"},
		Severity:    "中度风险",
		Suspected:   "脑小血管病 (CSVD) / 血管性认知障碍",
	},
	{
		Description: "黑质致密带（SNpc）在 NM-MRI（神经黑色素成像）上显示信号减低，燕尾征（Swallow Tail Sign）模糊或消失。纹状体多巴胺转运体摄取率降低。",
		Regions:     []string{"黑质", "纹状体"},
		Severity:    "高风险",
		Suspected:   "帕金森病 (PD)",
	},
	{
		Description: "左侧额叶可见一类圆形占位性病变，边界清晰，T1低信号，T2高信号，增强扫描可见明显强化，伴周围轻度水肿。",
		Regions:     []string{"左侧额叶"},
		Severity:    "高风险",
		Suspected:   "脑膜瘤 (Meningioma) 或 胶质瘤 (Glioma)",
	},
	{
		Description: "胼胝体及脑室旁可见多发垂直于侧脑室的卵圆形高信号灶（Dawson's Fingers），提示脱髓鞘改变。",
		Regions:     []string{"胼胝体", "脑室旁白质"},
		Severity:    "中度风险",
		Suspected:   "多发性硬化 (MS)",
	},
	{
		Description: "全脑结构扫描未见明显异常，皮层厚度在正常范围内，基底节区无异常信号，脑室系统形态正常。",
		Regions:     []string{"全脑"},
		Severity:    "健康",
		Suspected:   "健康对照 (CN)",
	},
}

// geneFinding is one canned entry of the micro-level (scRNA-seq)
// feature extractor.
type geneFinding struct {
	Summary   string
	RiskGenes []string
	CellType  string
}

var geneCatalog = []geneFinding{
	{
		Summary:   "scRNA-seq 显示 Microglia 中 TREM2, CD33 表达显著上调，提示神经炎症活跃。Astrocyte 呈反应性状态 (GFAP high)。",
		RiskGenes: []string{"APOE-e4", "TREM2", "CD33"},
		CellType:  "Microglia & Astrocytes",
	},
	{
		Summary:   "Excitatory Neurons (Layer 5/6) 突触相关基因 (SYT1, SNAP25) 表达下调。",
		RiskGenes: []string{"SYT1", "NRXN1", "GRIN2A"},
		CellType:  "Glutamatergic Neurons",
	},
	{
		Summary:   "Dopaminergic neuron 标记物 (TH, DAT) 表达水平降低，线粒体功能障碍相关基因 (PINK1) 异常。",
		RiskGenes: []string{"SNCA", "PINK1", "LRRK2"},
		CellType:  "Dopaminergic Neurons",
	},
	{
		Summary:   "基因表达谱正常，未检测到显著的疾病相关变异富集。",
		RiskGenes: []string{},
		CellType:  "Normal",
	},
}

// selectImagingFinding maps image bytes to a catalog entry: the md5
// digest interpreted as a big-endian integer, reduced modulo the
// catalog size. Identical bytes always select the same entry.
func selectImagingFinding(image []byte) imagingFinding {
	sum := md5.Sum(image)
	n := new(big.Int).SetBytes(sum[:])
	idx := new(big.Int).Mod(n, big.NewInt(int64(len(imagingCatalog)))).Int64()
	return imagingCatalog[idx]
}

// selectGeneFinding maps the gene file name to a catalog entry by
// character count modulo the catalog size.
func selectGeneFinding(filename string) geneFinding {
	return geneCatalog[utf8.RuneCountInString(filename)%len(geneCatalog)]
}
