/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package wire

// CommandKind discriminates a Command's active variant.
type CommandKind string

const (
	CommandRun          CommandKind = "Run"
	CommandStop         CommandKind = "Stop"
	CommandStatus       CommandKind = "Status"
	CommandLogs         CommandKind = "Logs"
	CommandPortAllocate CommandKind = "PortAllocate"
	CommandPortFree     CommandKind = "PortFree"
	CommandPortLookup   CommandKind = "PortLookup"
)

// RunParams is the payload of a Run command.
type RunParams struct {
	Cmd     string            `json:"cmd"`
	Cwd     string            `json:"cwd"`
	Env     map[string]string `json:"env"`
	Restart bool              `json:"restart"`
}

// StopParams is the payload of a Stop command.
type StopParams struct {
	Id uint32 `json:"id"`
}

// LogsParams is the payload of a Logs command.
type LogsParams struct {
	Id uint32 `json:"id"`
}

// PortAllocateParams is the payload of a PortAllocate command. A nil Port
// requests random allocation.
type PortAllocateParams struct {
	Port *uint16 `json:"port,omitempty"`
}

// PortFreeParams is the payload of a PortFree command.
type PortFreeParams struct {
	Port uint16 `json:"port"`
}

// PortLookupParams is the payload of a PortLookup command. A nil User lists
// every allocation.
type PortLookupParams struct {
	User *string `json:"user,omitempty"`
}

// Command is an externally-tagged union over the daemon's request kinds.
// Exactly one of the payload fields matching Kind is populated.
type Command struct {
	Kind CommandKind

	Run          *RunParams
	Stop         *StopParams
	Logs         *LogsParams
	PortAllocate *PortAllocateParams
	PortFree     *PortFreeParams
	PortLookup   *PortLookupParams
}

// NewRunCommand builds a Run command.
func NewRunCommand(p RunParams) Command { return Command{Kind: CommandRun, Run: &p} }

// NewStopCommand builds a Stop command.
func NewStopCommand(id uint32) Command { return Command{Kind: CommandStop, Stop: &StopParams{Id: id}} }

// NewStatusCommand builds a Status command.
func NewStatusCommand() Command { return Command{Kind: CommandStatus} }

// NewLogsCommand builds a Logs command.
func NewLogsCommand(id uint32) Command { return Command{Kind: CommandLogs, Logs: &LogsParams{Id: id}} }

// NewPortAllocateCommand builds a PortAllocate command. A nil port requests
// random allocation.
func NewPortAllocateCommand(port *uint16) Command {
	return Command{Kind: CommandPortAllocate, PortAllocate: &PortAllocateParams{Port: port}}
}

// NewPortFreeCommand builds a PortFree command.
func NewPortFreeCommand(port uint16) Command {
	return Command{Kind: CommandPortFree, PortFree: &PortFreeParams{Port: port}}
}

// NewPortLookupCommand builds a PortLookup command. A nil user lists every
// allocation.
func NewPortLookupCommand(user *string) Command {
	return Command{Kind: CommandPortLookup, PortLookup: &PortLookupParams{User: user}}
}

// MarshalJSON implements json.Marshaler using serde's externally-tagged enum
// layout: a bare string for fieldless variants, otherwise a single-key object
// keyed by the variant name.
func (c Command) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CommandStatus:
		return marshalBareString(string(c.Kind))
	case CommandRun:
		return marshalTagged(string(c.Kind), c.Run)
	case CommandStop:
		return marshalTagged(string(c.Kind), c.Stop)
	case CommandLogs:
		return marshalTagged(string(c.Kind), c.Logs)
	case CommandPortAllocate:
		return marshalTagged(string(c.Kind), c.PortAllocate)
	case CommandPortFree:
		return marshalTagged(string(c.Kind), c.PortFree)
	case CommandPortLookup:
		return marshalTagged(string(c.Kind), c.PortLookup)
	}

	return nil, ErrorUnknownVariant.Error(nil)
}

// UnmarshalJSON implements json.Unmarshaler for the Command union.
func (c *Command) UnmarshalJSON(data []byte) error {
	if tag, isBare, err := unmarshalBareOrTagged(data); err != nil {
		return err
	} else if isBare {
		c.Kind = CommandKind(tag)
		return nil
	}

	tag, raw, err := splitTagged(data)
	if err != nil {
		return err
	}

	c.Kind = CommandKind(tag)

	switch c.Kind {
	case CommandRun:
		c.Run = &RunParams{}
		return decodeInto(raw, c.Run)
	case CommandStop:
		c.Stop = &StopParams{}
		return decodeInto(raw, c.Stop)
	case CommandLogs:
		c.Logs = &LogsParams{}
		return decodeInto(raw, c.Logs)
	case CommandPortAllocate:
		c.PortAllocate = &PortAllocateParams{}
		return decodeInto(raw, c.PortAllocate)
	case CommandPortFree:
		c.PortFree = &PortFreeParams{}
		return decodeInto(raw, c.PortFree)
	case CommandPortLookup:
		c.PortLookup = &PortLookupParams{}
		return decodeInto(raw, c.PortLookup)
	}

	return ErrorUnknownVariant.Error(nil)
}
