package conf

type Bootstrap struct {
	Server *Server
	Data   *Data
	Radar  *Radar
}

type Server struct {
	Http *HTTP
}

type HTTP struct {
	Addr          string
	Timeout       string
	MaxUploadSize int64 `json:"max_upload_size"`
}

type Data struct {
	Database *Database
}

// Database driver 为 postgres 时 source 是 DSN，为 badger 时是数据目录
type Database struct {
	Driver string
	Source string
}

type Radar struct {
	Llm         *LLM         `json:"llm"`
	Log         *Log         `json:"log"`
	Concurrency *Concurrency `json:"concurrency"`
	Extraction  *Extraction  `json:"extraction"`
}

type LLM struct {
	Provider    string  `json:"provider"`
	BaseUrl     string  `json:"base_url"`
	ApiKey      string  `json:"api_key"`
	ApiVersion  string  `json:"api_version"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int32   `json:"max_tokens"`
	Timeout     int32   `json:"timeout"`
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type Concurrency struct {
	Qps     int32 `json:"qps"`
	Rpm     int32 `json:"rpm"`
	Workers int32 `json:"workers"`
}

type Extraction struct {
	OutputDir        string `json:"output_dir"`
	GenerateAnalysis *bool  `json:"generate_analysis"`
	MinImageSize     int32  `json:"min_image_size"`
}
