package rpc

import "google.golang.org/protobuf/encoding/protowire"

// The JSON tags follow the camelCase object form the dashboard has always
// rendered, so responses prettify the same way over HTTP and in the CLI.

type LoadDriverRequest struct {
	DriverName    string
	DriverVersion string
	DriverBinary  []byte
}

func (m *LoadDriverRequest) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.DriverName)
	b = appendString(b, 2, m.DriverVersion)
	return appendBytes(b, 3, m.DriverBinary)
}

func (m *LoadDriverRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) int {
	if typ == protowire.BytesType {
		switch num {
		case 1:
			return consumeString(&m.DriverName, b)
		case 2:
			return consumeString(&m.DriverVersion, b)
		case 3:
			return consumeBytes(&m.DriverBinary, b)
		}
	}
	return skipField(num, typ, b)
}

type LoadDriverResponse struct {
	DriverName    string `json:"driverName"`
	DriverVersion string `json:"driverVersion"`
}

func (m *LoadDriverResponse) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.DriverName)
	return appendString(b, 2, m.DriverVersion)
}

func (m *LoadDriverResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) int {
	return consumeNameVersion(&m.DriverName, &m.DriverVersion, num, typ, b)
}

type UnloadDriverRequest struct {
	DriverName    string
	DriverVersion string
}

func (m *UnloadDriverRequest) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.DriverName)
	return appendString(b, 2, m.DriverVersion)
}

func (m *UnloadDriverRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) int {
	return consumeNameVersion(&m.DriverName, &m.DriverVersion, num, typ, b)
}

type UnloadDriverResponse struct {
	DriverName    string `json:"driverName"`
	DriverVersion string `json:"driverVersion"`
}

func (m *UnloadDriverResponse) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.DriverName)
	return appendString(b, 2, m.DriverVersion)
}

func (m *UnloadDriverResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) int {
	return consumeNameVersion(&m.DriverName, &m.DriverVersion, num, typ, b)
}

func consumeNameVersion(name, version *string, num protowire.Number, typ protowire.Type, b []byte) int {
	if typ == protowire.BytesType {
		switch num {
		case 1:
			return consumeString(name, b)
		case 2:
			return consumeString(version, b)
		}
	}
	return skipField(num, typ, b)
}

type ListResolverRequest struct{}

func (m *ListResolverRequest) appendWire(b []byte) []byte { return b }

func (m *ListResolverRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) int {
	return skipField(num, typ, b)
}

// PathMapping binds a virtual path to a driver. AccountInfo is opaque text,
// usually a JSON document describing the account behind the path.
type PathMapping struct {
	Path          string `json:"path"`
	DriverName    string `json:"driverName"`
	DriverVersion string `json:"driverVersion"`
	AccountInfo   string `json:"accountInfo"`
}

func (m *PathMapping) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Path)
	b = appendString(b, 2, m.DriverName)
	b = appendString(b, 3, m.DriverVersion)
	return appendString(b, 4, m.AccountInfo)
}

func (m *PathMapping) consumeField(num protowire.Number, typ protowire.Type, b []byte) int {
	if typ == protowire.BytesType {
		switch num {
		case 1:
			return consumeString(&m.Path, b)
		case 2:
			return consumeString(&m.DriverName, b)
		case 3:
			return consumeString(&m.DriverVersion, b)
		case 4:
			return consumeString(&m.AccountInfo, b)
		}
	}
	return skipField(num, typ, b)
}

type ListResolverResponse struct {
	PathMappings []PathMapping `json:"pathMappingList"`
}

func (m *ListResolverResponse) appendWire(b []byte) []byte {
	for i := range m.PathMappings {
		b = appendMessage(b, 1, &m.PathMappings[i])
	}
	return b
}

func (m *ListResolverResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) int {
	if num == 1 && typ == protowire.BytesType {
		var pm PathMapping
		n := consumeMessage(&pm, b)
		if n >= 0 {
			m.PathMappings = append(m.PathMappings, pm)
		}
		return n
	}
	return skipField(num, typ, b)
}

type BindRequest struct {
	DriverName    string
	DriverVersion string
	Path          string
	AccountInfo   string
}

func (m *BindRequest) appendWire(b []byte) []byte {
	return appendBinding(b, m.DriverName, m.DriverVersion, m.Path, m.AccountInfo)
}

func (m *BindRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) int {
	return consumeBinding(&m.DriverName, &m.DriverVersion, &m.Path, &m.AccountInfo, num, typ, b)
}

type BindResponse struct {
	DriverName    string `json:"driverName"`
	DriverVersion string `json:"driverVersion"`
	Path          string `json:"path"`
	AccountInfo   string `json:"accountInfo"`
}

func (m *BindResponse) appendWire(b []byte) []byte {
	return appendBinding(b, m.DriverName, m.DriverVersion, m.Path, m.AccountInfo)
}

func (m *BindResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) int {
	return consumeBinding(&m.DriverName, &m.DriverVersion, &m.Path, &m.AccountInfo, num, typ, b)
}

func appendBinding(b []byte, name, version, path, info string) []byte {
	b = appendString(b, 1, name)
	b = appendString(b, 2, version)
	b = appendString(b, 3, path)
	return appendString(b, 4, info)
}

func consumeBinding(name, version, path, info *string, num protowire.Number, typ protowire.Type, b []byte) int {
	if typ == protowire.BytesType {
		switch num {
		case 1:
			return consumeString(name, b)
		case 2:
			return consumeString(version, b)
		case 3:
			return consumeString(path, b)
		case 4:
			return consumeString(info, b)
		}
	}
	return skipField(num, typ, b)
}

type UnbindRequest struct {
	Path string
}

func (m *UnbindRequest) appendWire(b []byte) []byte {
	return appendString(b, 1, m.Path)
}

func (m *UnbindRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) int {
	if num == 1 && typ == protowire.BytesType {
		return consumeString(&m.Path, b)
	}
	return skipField(num, typ, b)
}

type UnbindResponse struct {
	DriverName    string `json:"driverName"`
	DriverVersion string `json:"driverVersion"`
	AccountInfo   string `json:"accountInfo"`
}

func (m *UnbindResponse) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.DriverName)
	b = appendString(b, 2, m.DriverVersion)
	return appendString(b, 3, m.AccountInfo)
}

func (m *UnbindResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) int {
	if num == 3 && typ == protowire.BytesType {
		return consumeString(&m.AccountInfo, b)
	}
	return consumeNameVersion(&m.DriverName, &m.DriverVersion, num, typ, b)
}

// ExecutionRequest runs either an inline binary or a previously submitted
// program. Binary is sent whenever it is non-nil and ProgramID whenever it
// is non-empty.
type ExecutionRequest struct {
	Input     string
	Binary    []byte
	ProgramID string
}

func (m *ExecutionRequest) appendWire(b []byte) []byte {
	b = appendString(b, 2, m.Input)
	b = appendOptionalBytes(b, 5, m.Binary)
	return appendString(b, 6, m.ProgramID)
}

func (m *ExecutionRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) int {
	if typ == protowire.BytesType {
		switch num {
		case 2:
			return consumeString(&m.Input, b)
		case 5:
			return consumeBytes(&m.Binary, b)
		case 6:
			return consumeString(&m.ProgramID, b)
		}
	}
	return skipField(num, typ, b)
}

type ExecutionResponse struct {
	Output string `json:"output"`
}

func (m *ExecutionResponse) appendWire(b []byte) []byte {
	return appendString(b, 1, m.Output)
}

func (m *ExecutionResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) int {
	if num == 1 && typ == protowire.BytesType {
		return consumeString(&m.Output, b)
	}
	return skipField(num, typ, b)
}

type SubmitProgramRequest struct {
	Name    string
	Version string
	Binary  []byte
}

func (m *SubmitProgramRequest) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Name)
	b = appendString(b, 2, m.Version)
	return appendBytes(b, 3, m.Binary)
}

func (m *SubmitProgramRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) int {
	if num == 3 && typ == protowire.BytesType {
		return consumeBytes(&m.Binary, b)
	}
	return consumeNameVersion(&m.Name, &m.Version, num, typ, b)
}

type SubmitProgramResponse struct {
	ProgramID string `json:"programId"`
}

func (m *SubmitProgramResponse) appendWire(b []byte) []byte {
	return appendString(b, 1, m.ProgramID)
}

func (m *SubmitProgramResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) int {
	if num == 1 && typ == protowire.BytesType {
		return consumeString(&m.ProgramID, b)
	}
	return skipField(num, typ, b)
}

type ListProgramRequest struct{}

func (m *ListProgramRequest) appendWire(b []byte) []byte { return b }

func (m *ListProgramRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) int {
	return skipField(num, typ, b)
}

type Program struct {
	ProgramID string `json:"programId"`
	Name      string `json:"name"`
	Version   string `json:"version"`
}

func (m *Program) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.ProgramID)
	b = appendString(b, 2, m.Name)
	return appendString(b, 3, m.Version)
}

func (m *Program) consumeField(num protowire.Number, typ protowire.Type, b []byte) int {
	if typ == protowire.BytesType {
		switch num {
		case 1:
			return consumeString(&m.ProgramID, b)
		case 2:
			return consumeString(&m.Name, b)
		case 3:
			return consumeString(&m.Version, b)
		}
	}
	return skipField(num, typ, b)
}

type ListProgramResponse struct {
	Programs []Program `json:"programList"`
}

func (m *ListProgramResponse) appendWire(b []byte) []byte {
	for i := range m.Programs {
		b = appendMessage(b, 1, &m.Programs[i])
	}
	return b
}

func (m *ListProgramResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) int {
	if num == 1 && typ == protowire.BytesType {
		var p Program
		n := consumeMessage(&p, b)
		if n >= 0 {
			m.Programs = append(m.Programs, p)
		}
		return n
	}
	return skipField(num, typ, b)
}

type DriverDetailsRequest struct{}

func (m *DriverDetailsRequest) appendWire(b []byte) []byte { return b }

func (m *DriverDetailsRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) int {
	return skipField(num, typ, b)
}

type DriverDetail struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Ref returns the driver reference in name@version form.
func (d DriverDetail) Ref() string {
	return d.Name + "@" + d.Version
}

func (m *DriverDetail) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Name)
	return appendString(b, 2, m.Version)
}

func (m *DriverDetail) consumeField(num protowire.Number, typ protowire.Type, b []byte) int {
	return consumeNameVersion(&m.Name, &m.Version, num, typ, b)
}

type DriverDetailsResponse struct {
	Message string         `json:"message"`
	Drivers []DriverDetail `json:"driverDataList"`
}

func (m *DriverDetailsResponse) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Message)
	for i := range m.Drivers {
		b = appendMessage(b, 2, &m.Drivers[i])
	}
	return b
}

func (m *DriverDetailsResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) int {
	if typ == protowire.BytesType {
		switch num {
		case 1:
			return consumeString(&m.Message, b)
		case 2:
			var d DriverDetail
			n := consumeMessage(&d, b)
			if n >= 0 {
				m.Drivers = append(m.Drivers, d)
			}
			return n
		}
	}
	return skipField(num, typ, b)
}
