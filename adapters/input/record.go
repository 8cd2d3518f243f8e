package input

import (
	"budget-brain/core/types"
	"budget-brain/internal/errors"
)

// record is the shared wire shape for JSON and YAML. Either "channel" or the
// older "company" key names the channel. Metric fields are pointers so an
// absent key is told apart from an explicit zero.
type record struct {
	Channel string   `json:"channel" yaml:"channel"`
	Company string   `json:"company" yaml:"company"`
	CPMMean *float64 `json:"cpm_mean" yaml:"cpm_mean"`
	CPMCV   *float64 `json:"cpm_cv" yaml:"cpm_cv"`
	CTRMean *float64 `json:"ctr_mean" yaml:"ctr_mean"`
	CTRStd  *float64 `json:"ctr_std" yaml:"ctr_std"`
	CVRMean *float64 `json:"cvr_mean" yaml:"cvr_mean"`
	CVRStd  *float64 `json:"cvr_std" yaml:"cvr_std"`
}

func (r record) channelInput() (types.ChannelInput, *errors.Error) {
	name := r.Channel
	if name == "" {
		name = r.Company
	}
	fields := []struct {
		key   string
		value *float64
	}{
		{"cpm_mean", r.CPMMean},
		{"cpm_cv", r.CPMCV},
		{"ctr_mean", r.CTRMean},
		{"ctr_std", r.CTRStd},
		{"cvr_mean", r.CVRMean},
		{"cvr_std", r.CVRStd},
	}
	for _, f := range fields {
		if f.value == nil {
			return types.ChannelInput{}, errors.Parsing("missing required field "+f.key, nil).
				WithContext("channel", name)
		}
	}
	return types.ChannelInput{
		Channel: name,
		CPMMean: *r.CPMMean,
		CPMCV:   *r.CPMCV,
		CTRMean: *r.CTRMean,
		CTRStd:  *r.CTRStd,
		CVRMean: *r.CVRMean,
		CVRStd:  *r.CVRStd,
	}, nil
}

func toInputs(records []record, filename string) ([]types.ChannelInput, error) {
	out := make([]types.ChannelInput, 0, len(records))
	for i, r := range records {
		in, err := r.channelInput()
		if err != nil {
			return nil, err.WithContext("file", filename).WithContext("record", i)
		}
		out = append(out, in)
	}
	return out, nil
}
